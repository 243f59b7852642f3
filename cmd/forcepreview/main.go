// Pair force preview tool - interactive visualization with sliders.
//
// Shows the steering force a single neighbor exerts on an agent at the
// center, facing right, for every neighbor position inside the enlarged
// radius. Hue is the force direction, brightness its magnitude.
//
// Usage: go run ./cmd/forcepreview
package main

import (
	"fmt"
	"image/color"
	"math"
	"math/cmplx"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/flock"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 128
)

// slider describes one parameter row of the control panel.
type slider struct {
	label    string
	min, max float32
	format   string
	value    *float64
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Pair Force Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := flock.DefaultParams()
	neighborAngle := 0.0 // neighbor heading, radians from +x

	probe := NewProbe()
	defer probe.Close()
	field := NewField(gridSize)

	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	sliders := []slider{
		{"Separation", 0, 5, "%.2f", &params.Separation},
		{"Cohesion", 0, 5, "%.2f", &params.Cohesion},
		{"Alignment", 0, 1, "%.3f", &params.Alignment},
		{"Blind angle (rad)", 0, math.Pi, "%.2f", &params.BlindAngle},
		{"Boid radius", 0, 2, "%.2f", &params.BoidRadius},
		{"Neighbor heading (rad)", -math.Pi, math.Pi, "%.2f", &neighborAngle},
	}

	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			field.Sample(probe, params, cmplx.Rect(1, neighborAngle))
			updateTexture(texture, field)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
		drawOverlay(params)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Max |F|: %.3f  Extent: ±%.1f", field.Max, 2*params.InteractionRadius), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("Inner circle: r   Outer circle: 2r   Wedge: blind cone", 15, statsY+20, 14, rl.Gray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Pair Force Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			cur := float32(*s.value)
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != cur {
				*s.value = float64(v)
				needsRegen = true
			}
			panelY += 35
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = flock.DefaultParams()
			neighborAngle = 0
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := paramsYAML(params)
		for _, line := range yaml {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yaml {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func paramsYAML(p flock.Params) []string {
	return []string{
		"params:",
		fmt.Sprintf("  separation: %.2f", p.Separation),
		fmt.Sprintf("  cohesion: %.2f", p.Cohesion),
		fmt.Sprintf("  alignment: %.3f", p.Alignment),
		fmt.Sprintf("  blind_angle: %.4f", p.BlindAngle),
		fmt.Sprintf("  boid_radius: %.2f", p.BoidRadius),
	}
}

// drawOverlay marks the probe agent, both radii and the blind cone.
func drawOverlay(p flock.Params) {
	cx := float32(10 + previewSize/2)
	cy := float32(10 + previewSize/2)
	scale := float32(previewSize) / float32(4*p.InteractionRadius)

	rl.DrawCircleLines(int32(cx), int32(cy), float32(p.InteractionRadius)*scale, rl.Fade(rl.White, 0.6))
	rl.DrawCircleLines(int32(cx), int32(cy), float32(2*p.InteractionRadius)*scale, rl.Fade(rl.White, 0.3))

	// Blind cone opens backwards (-x), half-angle BlindAngle/2
	if p.BlindAngle > 0 {
		half := float32(p.BlindAngle/2) * rl.Rad2deg
		rl.DrawCircleSector(rl.Vector2{X: cx, Y: cy}, float32(p.InteractionRadius)*scale,
			180-half, 180+half, 24, rl.Fade(rl.Black, 0.25))
	}

	rl.DrawTriangle(
		rl.Vector2{X: cx + 8, Y: cy},
		rl.Vector2{X: cx - 5, Y: cy - 5},
		rl.Vector2{X: cx - 5, Y: cy + 5},
		rl.White,
	)
}

// updateTexture maps force direction to hue and magnitude to value.
func updateTexture(texture rl.Texture2D, field *Field) {
	pixels := make([]color.RGBA, len(field.Magnitude))
	for i, m := range field.Magnitude {
		v := 0.0
		if field.Max > 0 {
			v = math.Sqrt(m / field.Max)
		}
		hue := float32(math.Mod(field.Direction[i]*180/math.Pi+360, 360))
		c := rl.ColorFromHSV(hue, 0.75, float32(v))
		pixels[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
