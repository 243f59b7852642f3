package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/flock"
)

// ParamsEntry is one ensemble shown in the params panel.
type ParamsEntry struct {
	Name   string
	Color  rl.Color
	Params flock.Params
}

// ParamEdit is a slider change made during one frame.
type ParamEdit struct {
	Flock int
	Field components.FieldDescriptor
	Value float64
}

// ParamsResult is what the user did with the panel in one frame.
type ParamsResult struct {
	Edits []ParamEdit
	Reset bool
}

// ParamsPanel renders raygui sliders for the editable ensemble parameters.
type ParamsPanel struct {
	renderer *Renderer
	fields   []components.FieldDescriptor
	x, y     int32
	width    int32
	height   int32
	visible  bool
}

// NewParamsPanel creates a params panel anchored at (x, y).
func NewParamsPanel(x, y, width int32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		fields:   components.ParamFields(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (p *ParamsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Toggle switches panel visibility.
func (p *ParamsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Contains reports whether the screen point lies on the panel as last drawn.
func (p *ParamsPanel) Contains(x, y float32) bool {
	if !p.visible {
		return false
	}
	bounds := rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(p.height)}
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, bounds)
}

// Draw renders one slider group per ensemble and returns the edits.
func (p *ParamsPanel) Draw(entries []ParamsEntry) ParamsResult {
	var res ParamsResult
	if !p.visible {
		return res
	}

	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	sliderH := int32(16)
	rowH := lineHeight + sliderH + 6

	p.height = padding*2 + lineHeight + 4 + 30 +
		int32(len(entries))*(lineHeight+4+int32(len(p.fields))*rowH)
	r.DrawPanel(p.x, p.y, p.width, p.height)

	y := p.y + padding
	rl.DrawText("Parameters", p.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	sliderW := float32(p.width - padding*2 - 60)
	for k, e := range entries {
		y = r.DrawColorSwatch(p.x+padding, y, e.Name, e.Color)
		for _, fd := range p.fields {
			cur := fd.Get(&e.Params)
			rl.DrawText(fd.Label, p.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
			y += lineHeight

			bounds := rl.Rectangle{X: float32(p.x + padding), Y: float32(y), Width: sliderW, Height: float32(sliderH)}
			v := gui.SliderBar(bounds, "", "", float32(cur), float32(fd.Min), float32(fd.Max))
			rl.DrawText(fmt.Sprintf(fd.Format, cur), p.x+padding+int32(sliderW)+6, y+2, r.Theme.FontSize, r.Theme.ValueColor)
			if float64(v) != float64(float32(cur)) {
				res.Edits = append(res.Edits, ParamEdit{Flock: k, Field: fd, Value: float64(v)})
			}
			y += sliderH + 6
		}
	}

	if gui.Button(rl.Rectangle{X: float32(p.x + padding), Y: float32(y), Width: 120, Height: 24}, "Respawn") {
		res.Reset = true
	}
	return res
}
