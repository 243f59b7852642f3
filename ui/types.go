// Package ui draws the viewer's panels and parameter controls.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// TierPalette colors the neighbor tiers of the selected agent.
type TierPalette struct {
	Neighbor rl.Color
	Reduced  rl.Color
	Enlarged rl.Color
	Radius   rl.Color
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	Tiers         TierPalette

	// Phases above these shares of the step time are highlighted.
	PhaseWarmPct float64
	PhaseHotPct  float64

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:   rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader: rl.Yellow,
		LabelColor:    rl.LightGray,
		ValueColor:    rl.LightGray,
		BarBg:         rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:       rl.Color{R: 100, G: 150, B: 200, A: 255},
		Tiers: TierPalette{
			Neighbor: rl.Color{R: 120, G: 200, B: 255, A: 160},
			Reduced:  rl.Color{R: 120, G: 255, B: 140, A: 220},
			Enlarged: rl.Color{R: 255, G: 120, B: 90, A: 90},
			Radius:   rl.Color{R: 255, G: 255, B: 255, A: 120},
		},
		PhaseWarmPct:   20,
		PhaseHotPct:    40,
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// PhaseColor returns the text color for a phase taking pct percent of a step.
func (t Theme) PhaseColor(pct float64) rl.Color {
	switch {
	case pct > t.PhaseHotPct:
		return rl.Red
	case pct > t.PhaseWarmPct:
		return rl.Orange
	default:
		return t.LabelColor
	}
}
