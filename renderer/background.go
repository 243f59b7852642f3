// Package renderer draws the simulation with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
)

// BackgroundRenderer renders a world-space reference grid.
type BackgroundRenderer struct {
	base  rl.Color
	minor rl.Color
	major rl.Color

	// Grid spacing in world units
	spacing float32
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		base:    rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		minor:   rl.Color{R: baseR + 12, G: baseG + 12, B: baseB + 14, A: 255},
		major:   rl.Color{R: baseR + 28, G: baseG + 28, B: baseB + 32, A: 255},
		spacing: 10,
	}
}

// Draw clears the screen and draws grid lines every spacing world units,
// with a brighter line every fifth. Lines closer than 8px are skipped.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	rl.ClearBackground(b.base)

	step := b.spacing
	for cam.WorldLength(step) < 8 {
		step *= 5
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	w, h := int32(cam.ViewportW), int32(cam.ViewportH)

	for x := float32(math.Floor(float64(minX/step))) * step; x <= maxX; x += step {
		sx, _ := cam.WorldToScreen(x, 0)
		rl.DrawLine(int32(sx), 0, int32(sx), h, b.lineColor(x, step))
	}
	for y := float32(math.Floor(float64(minY/step))) * step; y <= maxY; y += step {
		_, sy := cam.WorldToScreen(0, y)
		rl.DrawLine(0, int32(sy), w, int32(sy), b.lineColor(y, step))
	}
}

func (b *BackgroundRenderer) lineColor(v, step float32) rl.Color {
	if int64(math.Round(float64(v/step)))%5 == 0 {
		return b.major
	}
	return b.minor
}
