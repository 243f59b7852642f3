package renderer

import (
	"math"
	"math/cmplx"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/flock"
)

// FlockRenderer draws agents as triangles pointing along their heading.
type FlockRenderer struct {
	// Agent size in world units
	Size float32
	// Agents smaller than this many pixels are drawn as points
	MinPixels float32
}

// NewFlockRenderer creates a flock renderer.
func NewFlockRenderer() *FlockRenderer {
	return &FlockRenderer{Size: 0.6, MinPixels: 3}
}

// Draw renders every visible agent of f.
func (r *FlockRenderer) Draw(cam *camera.Camera, f *flock.Flock, tint components.Tint) {
	color := rl.Color{R: tint.R, G: tint.G, B: tint.B, A: tint.A}
	pos, head := f.Positions(), f.Headings()
	size := cam.WorldLength(r.Size)

	for i := range pos {
		x, y := float32(pos[i].X), float32(pos[i].Y)
		if !cam.IsVisible(x, y, r.Size) {
			continue
		}
		sx, sy := cam.WorldToScreen(x, y)
		if size < r.MinPixels {
			rl.DrawPixel(int32(sx), int32(sy), color)
			continue
		}
		drawOrientedTriangle(sx, sy, head[i], size, color)
	}
}

// DrawTarget marks the target point of f.
func (r *FlockRenderer) DrawTarget(cam *camera.Camera, f *flock.Flock, tint components.Tint) {
	p := f.Params().Target
	sx, sy := cam.WorldToScreen(float32(p.X), float32(p.Y))
	color := rl.Color{R: tint.R, G: tint.G, B: tint.B, A: 200}
	rl.DrawCircleLines(int32(sx), int32(sy), 8, color)
	rl.DrawLine(int32(sx)-12, int32(sy), int32(sx)+12, int32(sy), color)
	rl.DrawLine(int32(sx), int32(sy)-12, int32(sx), int32(sy)+12, color)
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
// heading is a unit complex number; size is in pixels.
func drawOrientedTriangle(x, y float32, heading complex128, size float32, color rl.Color) {
	back := cmplx.Rect(1, 0.8*math.Pi)
	left := heading * back
	right := heading * cmplx.Conj(back)

	v1 := rl.Vector2{X: x + float32(real(heading))*size*1.5, Y: y + float32(imag(heading))*size*1.5}
	v2 := rl.Vector2{X: x + float32(real(left))*size, Y: y + float32(imag(left))*size}
	v3 := rl.Vector2{X: x + float32(real(right))*size, Y: y + float32(imag(right))*size}

	// DrawTriangle requires counter-clockwise winding in screen space
	if (v2.X-v1.X)*(v3.Y-v1.Y)-(v2.Y-v1.Y)*(v3.X-v1.X) > 0 {
		v2, v3 = v3, v2
	}
	rl.DrawTriangle(v1, v2, v3, color)
}
