package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Step           int
	SimTime        float64
	Agents         int
	Flocks         int
	Strategy       string
	StepsPerUpdate int
	FPS            int32
	Paused         bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Flocks: %d | Index: %s", data.Agents, data.Flocks, data.Strategy),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Step: %d | t=%.2fs | Speed: %dx | FPS: %d", data.Step, data.SimTime, data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the phase performance panel.
type PerfPanel struct {
	renderer *Renderer
	registry *systems.PhaseRegistry
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32, registry *systems.PhaseRegistry) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: registry,
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders phase timings grouped by category, in pipeline order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Phase Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Step: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	theme := p.renderer.Theme
	for _, cat := range p.registry.Categories() {
		var catPct float64
		for _, info := range p.registry.ByCategory(cat) {
			catPct += stats.PhasePct[info.ID]
		}
		rl.DrawText(fmt.Sprintf("%s %5.1f%%", cat, catPct), x, y, 12, theme.SectionHeader)
		y += 14

		for _, info := range p.registry.ByCategory(cat) {
			avg := stats.PhaseAvg[info.ID]
			pct := stats.PhasePct[info.ID]
			rl.DrawText(
				fmt.Sprintf("  %-10s %8s %5.1f%%", info.Name, avg.Round(time.Microsecond), pct),
				x, y, 12, theme.PhaseColor(pct),
			)
			y += 14
		}
	}
}

// StatsPanel renders the latest statistics window of each ensemble.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders one block per ensemble. colors[k] tints stats[k].
func (s *StatsPanel) Draw(stats []telemetry.FlockStats, colors []rl.Color) {
	if len(stats) == 0 {
		return
	}
	r := s.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	height := int32(len(stats))*(lineHeight*5+4) + padding*2
	r.DrawPanel(s.x, s.y, s.width, height)

	y := s.y + padding
	inner := s.width - padding*2
	for k, st := range stats {
		color := rl.White
		if k < len(colors) {
			color = colors[k]
		}
		y = r.DrawColorSwatch(s.x+padding, y, st.Flock, color)
		y = r.DrawBar(s.x+padding, y, "Polarization", float32(st.Polarization), inner)
		y = r.DrawLabelValue(s.x+padding, y, "Speed", fmt.Sprintf("%.2f ± %.2f", st.SpeedMean, st.SpeedStd))
		y = r.DrawTierCounts(s.x+padding, y, "Neighbors", st.NeighborsMean, st.ReducedMean, st.EnlargedMean)
	}
}
