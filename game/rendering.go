package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/flock"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/ui"
)

const (
	panelWidth = 280
	controls   = "[Space] pause  [N] step  [</>] speed  [LMB] target  [RMB] select  [D] debug  [R/E] tiers  [P] params  [Tab] perf  [Home] camera"
)

// initViewer creates the camera, renderers and panels.
func (g *Game) initViewer() {
	g.screenWidth = float32(g.cfg.Screen.Width)
	g.screenHeight = float32(g.cfg.Screen.Height)

	// Frame the largest spawn disc
	var cx, cy, span float64
	for _, fc := range g.cfg.Flocks {
		if s := 2.5 * fc.SpawnRadius; s > span {
			cx, cy, span = fc.Center.X, fc.Center.Y, s
		}
	}
	if span == 0 {
		span = 100
	}

	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(cx), float32(cy), float32(span))
	g.background = renderer.NewBackgroundRenderer(14, 17, 22)
	g.flockRenderer = renderer.NewFlockRenderer()
	g.debugOverlay = renderer.NewDebugOverlay()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 100, g.registry)
	g.statsPanel = ui.NewStatsPanel(0, 0, panelWidth)
	g.paramsPanel = ui.NewParamsPanel(0, 0, panelWidth)
	g.layoutPanels()
}

// layoutPanels anchors the right-hand panels to the current screen width.
func (g *Game) layoutPanels() {
	x := int32(g.screenWidth) - panelWidth - 10
	g.paramsPanel.SetPosition(x, 10)
	g.statsPanel.SetPosition(10, int32(g.screenHeight)-40-int32(len(g.flocks))*84)
}

// Update handles input and runs steps_per_update steps unless paused.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		if rl.IsKeyPressed(rl.KeyN) {
			g.stepOrPause()
		}
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		if !g.stepOrPause() {
			return
		}
	}
}

// stepOrPause runs one step; a failed step is logged and pauses the viewer.
func (g *Game) stepOrPause() bool {
	if err := g.Step(); err != nil {
		slog.Error("step failed", "step", g.scheduler.StepCount(), "error", err)
		g.paused = true
		return false
	}
	return true
}

// Draw renders the game.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	g.background.Draw(g.camera)

	for k, f := range g.flocks {
		g.flockRenderer.Draw(g.camera, f, g.tints[k])
	}
	query := g.pointerFilter.Query()
	for query.Next() {
		swarm, _ := query.Get()
		g.flockRenderer.DrawTarget(g.camera, swarm.Flock, g.tints[swarm.Index])
	}

	if g.debugMode && g.selection.valid() {
		g.debugOverlay.Draw(g.camera, g.flocks[g.selection.flock], g.selection.agent)
	}

	g.drawUI()
	rl.EndDrawing()
}

// drawUI renders the HUD and panels.
func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:          "Flock",
		Step:           g.scheduler.StepCount(),
		SimTime:        g.SimTime(),
		Agents:         g.cfg.Derived.TotalAgents,
		Flocks:         len(g.flocks),
		Strategy:       string(g.strategy),
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
	})

	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	colors := make([]rl.Color, len(g.tints))
	for k, t := range g.tints {
		colors[k] = rl.Color{R: t.R, G: t.G, B: t.B, A: t.A}
	}
	g.statsPanel.Draw(g.lastStats, colors)

	entries := make([]ui.ParamsEntry, len(g.flocks))
	for k, f := range g.flocks {
		entries[k] = ui.ParamsEntry{Name: f.Name(), Color: colors[k], Params: f.Params()}
	}
	res := g.paramsPanel.Draw(entries)
	for _, e := range res.Edits {
		g.scheduler.Configure(e.Flock, func(p *flock.Params) { e.Field.Set(p, e.Value) })
	}
	if res.Reset {
		g.respawn()
	}

	g.hud.DrawControls(int32(g.screenHeight), controls)
}
