package components

import (
	"math"

	"github.com/pthm-cable/flock/flock"
)

// FieldDescriptor describes an editable ensemble parameter for UI display.
type FieldDescriptor struct {
	ID     string  // Unique identifier
	Label  string  // Display name
	Format string  // Printf format (e.g., "%.2f")
	Min    float64 // Slider minimum
	Max    float64 // Slider maximum

	Get func(p *flock.Params) float64
	Set func(p *flock.Params, v float64)
}

// ParamFields returns the parameters exposed by the viewer's sliders.
func ParamFields() []FieldDescriptor {
	return []FieldDescriptor{
		{
			ID: "separation", Label: "Separation", Format: "%.2f", Min: 0, Max: 5,
			Get: func(p *flock.Params) float64 { return p.Separation },
			Set: func(p *flock.Params, v float64) { p.Separation = v },
		},
		{
			ID: "cohesion", Label: "Cohesion", Format: "%.2f", Min: 0, Max: 5,
			Get: func(p *flock.Params) float64 { return p.Cohesion },
			Set: func(p *flock.Params, v float64) { p.Cohesion = v },
		},
		{
			ID: "alignment", Label: "Alignment", Format: "%.3f", Min: 0, Max: 1,
			Get: func(p *flock.Params) float64 { return p.Alignment },
			Set: func(p *flock.Params, v float64) { p.Alignment = v },
		},
		{
			ID: "blind_angle", Label: "Blind angle", Format: "%.2f", Min: 0, Max: math.Pi,
			Get: func(p *flock.Params) float64 { return p.BlindAngle },
			Set: func(p *flock.Params, v float64) { p.BlindAngle = v },
		},
	}
}
