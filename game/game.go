// Package game wires configuration, the ensemble scene, the step scheduler
// and telemetry into a runnable simulation, with an optional raylib viewer.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/flock"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/scheduler"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

// Options configures a game instance. Zero values fall back to config.
type Options struct {
	Seed           int64 // Added to every flock seed; 0 keeps the configured seeds
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Strategy       string // tree | brute
	RebuildEvery   int
	Workers        int
}

// Game holds the simulation state.
type Game struct {
	cfg *config.Config

	// ECS scene: one entity per ensemble
	world         *ecs.World
	swarmMapper   *ecs.Map4[components.Swarm, components.Label, components.Tint, components.Spawn]
	pointerMapper *ecs.Map5[components.Swarm, components.Label, components.Tint, components.Spawn, components.PointerTarget]
	swarmFilter   *ecs.Filter4[components.Swarm, components.Label, components.Tint, components.Spawn]
	pointerFilter *ecs.Filter2[components.Swarm, components.PointerTarget]

	// Ensembles in scheduler order
	flocks []*flock.Flock
	tints  []components.Tint

	pool      *scheduler.Pool
	scheduler *scheduler.Scheduler
	strategy  systems.Strategy
	seed      int64

	// Telemetry
	perfCollector     *telemetry.PerfCollector
	collector         *telemetry.Collector
	bookmarkDetectors []*telemetry.BookmarkDetector
	outputManager     *telemetry.OutputManager
	logStats          bool
	traceEvery        int
	lastStats         []telemetry.FlockStats
	statsCallback     func([]telemetry.FlockStats)

	// Viewer
	camera        *camera.Camera
	background    *renderer.BackgroundRenderer
	flockRenderer *renderer.FlockRenderer
	debugOverlay  *renderer.DebugOverlay
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	statsPanel    *ui.StatsPanel
	paramsPanel   *ui.ParamsPanel
	registry      *systems.PhaseRegistry

	// State
	paused         bool
	stepsPerUpdate int
	debugMode      bool
	showPerf       bool
	selection      selection

	screenWidth, screenHeight float32
}

// New creates a game from configuration.
func New(cfg *config.Config, opts Options) (*Game, error) {
	// Options override config
	strategy := systems.Strategy(cfg.Index.Strategy)
	if opts.Strategy != "" {
		strategy = systems.Strategy(opts.Strategy)
	}
	rebuildEvery := cfg.Index.RebuildEvery
	if opts.RebuildEvery > 0 {
		rebuildEvery = opts.RebuildEvery
	}
	workers := cfg.Physics.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	stepsPerUpdate := cfg.Physics.StepsPerUpdate
	if opts.StepsPerUpdate > 0 {
		stepsPerUpdate = opts.StepsPerUpdate
	}
	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	// Create ECS world and mappers
	world := ecs.NewWorld()
	g := &Game{
		cfg:            cfg,
		world:          world,
		swarmMapper:    ecs.NewMap4[components.Swarm, components.Label, components.Tint, components.Spawn](world),
		pointerMapper:  ecs.NewMap5[components.Swarm, components.Label, components.Tint, components.Spawn, components.PointerTarget](world),
		swarmFilter:    ecs.NewFilter4[components.Swarm, components.Label, components.Tint, components.Spawn](world),
		pointerFilter:  ecs.NewFilter2[components.Swarm, components.PointerTarget](world),
		strategy:       strategy,
		seed:           opts.Seed,
		logStats:       opts.LogStats,
		traceEvery:     cfg.Telemetry.TraceEvery,
		stepsPerUpdate: stepsPerUpdate,
		registry:       systems.NewPhaseRegistry(),
		selection:      noSelection,
	}

	if err := g.spawnEnsembles(rebuildEvery); err != nil {
		g.closeFlocks()
		return nil, err
	}

	// Worker pool and step pipeline
	g.pool = scheduler.NewPool(workers)
	g.scheduler = scheduler.New(g.pool,
		systems.DefaultPhases(systems.PipelineOptions{
			Extent:      systems.QueryExtent(cfg.Index.QueryExtent),
			MaxTurnRate: cfg.Physics.MaxTurnRate,
		}),
		g.flocks,
		scheduler.Options{DT: cfg.Physics.DT, BatchSize: cfg.Index.BatchSize},
	)

	// Telemetry
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.scheduler.SetObserver(g.perfCollector)
	g.collector = telemetry.NewCollector(statsWindow, cfg.Physics.DT)
	for range g.flocks {
		g.bookmarkDetectors = append(g.bookmarkDetectors, telemetry.NewBookmarkDetector(10))
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.Unload()
		return nil, err
	}
	g.outputManager = om
	if err := g.writeRunHeader(workers); err != nil {
		g.Unload()
		return nil, err
	}

	if !opts.Headless {
		g.initViewer()
	}

	slog.Info("game created",
		"flocks", len(g.flocks),
		"agents", cfg.Derived.TotalAgents,
		"strategy", string(strategy),
		"rebuild_every", rebuildEvery,
		"workers", g.pool.Workers(),
		"dt", cfg.Physics.DT,
	)
	return g, nil
}

// spawnEnsembles creates one flock and one scene entity per configured flock.
func (g *Game) spawnEnsembles(rebuildEvery int) error {
	for k, fc := range g.cfg.Flocks {
		tint, err := components.ParseTint(fc.Color)
		if err != nil {
			return fmt.Errorf("flock %q: %w", fc.Name, err)
		}
		idx, err := systems.NewIndex(g.strategy, rebuildEvery)
		if err != nil {
			return fmt.Errorf("flock %q: %w", fc.Name, err)
		}

		f := flock.New(fc.Name, fc.Count, fc.Params.ToParams())
		f.SetIndex(idx)
		spawn := components.Spawn{Center: fc.Center.Vec(), Radius: fc.SpawnRadius, Seed: fc.Seed + g.seed}
		f.SpawnDisc(spawn.Center, spawn.Radius, spawn.Seed)

		swarm := components.Swarm{Flock: f, Index: k}
		label := components.Label{Name: fc.Name}
		if fc.PointerTarget {
			g.pointerMapper.NewEntity(&swarm, &label, &tint, &spawn, &components.PointerTarget{})
		} else {
			g.swarmMapper.NewEntity(&swarm, &label, &tint, &spawn)
		}

		g.flocks = append(g.flocks, f)
		g.tints = append(g.tints, tint)
	}
	return nil
}

// respawn places every ensemble again from its recorded spawn parameters.
func (g *Game) respawn() {
	query := g.swarmFilter.Query()
	for query.Next() {
		swarm, _, _, spawn := query.Get()
		f := swarm.Flock
		f.SpawnDisc(spawn.Center, spawn.Radius, spawn.Seed)
		if idx := f.Index(); idx != nil {
			idx.Rebuild(f.Positions())
		}
	}
	slog.Info("ensembles respawned", "step", g.scheduler.StepCount())
}

// setPointerTarget moves the target of every pointer-controlled ensemble.
func (g *Game) setPointerTarget(x, y float64) {
	query := g.pointerFilter.Query()
	for query.Next() {
		swarm, _ := query.Get()
		g.scheduler.Configure(swarm.Index, func(p *flock.Params) {
			p.Target.X = x
			p.Target.Y = y
		})
	}
}

func (g *Game) writeRunHeader(workers int) error {
	if g.outputManager == nil {
		return nil
	}
	if err := g.outputManager.WriteConfig(g.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	names := make([]string, len(g.flocks))
	for k, f := range g.flocks {
		names[k] = f.Name()
	}
	return g.outputManager.WriteManifest(telemetry.Manifest{
		Strategy: string(g.strategy),
		Workers:  g.pool.Workers(),
		Flocks:   names,
		Agents:   g.cfg.Derived.TotalAgents,
	})
}

// Step advances the simulation by one step and runs telemetry.
func (g *Game) Step() error {
	g.perfCollector.StartTick()
	if err := g.scheduler.Step(); err != nil {
		g.collector.RecordFailedStep()
		g.perfCollector.EndTick()
		return err
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	step := g.scheduler.StepCount()
	if g.traceEvery > 0 && step%g.traceEvery == 0 {
		if err := g.outputManager.WriteTrace(step, g.flocks); err != nil {
			slog.Error("failed to write trace", "error", err)
		}
	}
	g.flushTelemetry()
	g.perfCollector.EndTick()
	return nil
}

// UpdateHeadless runs steps without any rendering.
func (g *Game) UpdateHeadless() error {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Flocks returns the ensembles in scheduler order.
func (g *Game) Flocks() []*flock.Flock {
	return g.flocks
}

// StepCount returns the number of completed steps.
func (g *Game) StepCount() int {
	return g.scheduler.StepCount()
}

// SimTime returns the simulated time in seconds.
func (g *Game) SimTime() float64 {
	return float64(g.scheduler.StepCount()) * g.scheduler.DT()
}

// Strategy returns the spatial index strategy in use.
func (g *Game) Strategy() systems.Strategy {
	return g.strategy
}

// LastStats returns the most recent stats window, one entry per ensemble.
func (g *Game) LastStats() []telemetry.FlockStats {
	return g.lastStats
}

// SetStatsCallback installs a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func([]telemetry.FlockStats)) {
	g.statsCallback = fn
}

// Unload stops the workers and releases all resources.
func (g *Game) Unload() {
	if g.scheduler != nil {
		g.scheduler.Close()
	} else if g.pool != nil {
		g.pool.Close()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
	g.closeFlocks()
}

func (g *Game) closeFlocks() {
	for _, f := range g.flocks {
		f.Close()
	}
}
