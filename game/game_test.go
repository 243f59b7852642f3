package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/telemetry"
)

const testConfig = `
flock_defaults:
  count: 300
  spawn_radius: 12
flocks:
  - name: lead
  - name: trail
    center: {x: 60, y: 0}
    color: "#4a90d9"
    pointer_target: false
    params:
      target: {x: 60, y: 0}
telemetry:
  stats_window: 0.1
`

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	opts.Headless = true
	g, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

func runSteps(t *testing.T, g *Game, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, g.Step())
	}
}

func TestNewBuildsScene(t *testing.T) {
	g := newHeadless(t, Options{})

	require.Len(t, g.Flocks(), 2)
	assert.Equal(t, "lead", g.Flocks()[0].Name())
	assert.Equal(t, "trail", g.Flocks()[1].Name())
	assert.Equal(t, 300, g.Flocks()[1].Len())

	swarms := 0
	query := g.swarmFilter.Query()
	for query.Next() {
		swarm, label, _, _ := query.Get()
		assert.Same(t, g.Flocks()[swarm.Index], swarm.Flock)
		assert.Equal(t, swarm.Flock.Name(), label.Name)
		swarms++
	}
	assert.Equal(t, 2, swarms)

	pointers := 0
	pq := g.pointerFilter.Query()
	for pq.Next() {
		swarm, _ := pq.Get()
		assert.Equal(t, 0, swarm.Index)
		pointers++
	}
	assert.Equal(t, 1, pointers)
}

func TestStepDeterminismAcrossWorkers(t *testing.T) {
	for _, strategy := range []string{"tree", "brute"} {
		t.Run(strategy, func(t *testing.T) {
			a := newHeadless(t, Options{Strategy: strategy, Workers: 1})
			b := newHeadless(t, Options{Strategy: strategy, Workers: 8})
			runSteps(t, a, 25)
			runSteps(t, b, 25)

			for k := range a.Flocks() {
				assert.Equal(t, a.Flocks()[k].Positions(), b.Flocks()[k].Positions())
				assert.Equal(t, a.Flocks()[k].Velocities(), b.Flocks()[k].Velocities())
				assert.Equal(t, a.Flocks()[k].Headings(), b.Flocks()[k].Headings())
			}
		})
	}
}

func TestSeedOptionShiftsPlacement(t *testing.T) {
	a := newHeadless(t, Options{})
	b := newHeadless(t, Options{Seed: 7})
	assert.NotEqual(t, a.Flocks()[0].Positions(), b.Flocks()[0].Positions())
}

func TestUnknownStrategyRejected(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	_, err = New(cfg, Options{Headless: true, Strategy: "grid"})
	assert.Error(t, err)
}

func TestPointerTargetOnlyMovesFlaggedEnsembles(t *testing.T) {
	g := newHeadless(t, Options{})

	g.setPointerTarget(-20, 35)
	assert.Equal(t, r2.Vec{X: -20, Y: 35}, g.Flocks()[0].Params().Target)
	assert.Equal(t, r2.Vec{X: 60, Y: 0}, g.Flocks()[1].Params().Target)
}

func TestRespawnRestoresPlacement(t *testing.T) {
	g := newHeadless(t, Options{})

	initial := append([]r2.Vec(nil), g.Flocks()[0].Positions()...)
	runSteps(t, g, 5)
	assert.NotEqual(t, initial, g.Flocks()[0].Positions())

	g.respawn()
	assert.Equal(t, initial, g.Flocks()[0].Positions())
	runSteps(t, g, 1)
}

func TestTelemetryWindows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	g := newHeadless(t, Options{OutputDir: dir})

	var windows [][]telemetry.FlockStats
	g.SetStatsCallback(func(s []telemetry.FlockStats) { windows = append(windows, s) })

	// 0.1s windows at dt=0.01
	runSteps(t, g, 25)
	require.Len(t, windows, 2)
	require.Len(t, g.LastStats(), 2)
	assert.Equal(t, 20, g.LastStats()[0].WindowEndStep)
	assert.Equal(t, "trail", g.LastStats()[1].Flock)
	assert.Equal(t, 300, g.LastStats()[1].Count)
	assert.InDelta(t, 0.25, g.SimTime(), 1e-12)

	g.Unload()
	for _, name := range []string{"stats.csv", "perf.csv", "config.yaml", "manifest.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestUpdateHeadlessRunsStepsPerUpdate(t *testing.T) {
	g := newHeadless(t, Options{StepsPerUpdate: 3})
	require.NoError(t, g.UpdateHeadless())
	assert.Equal(t, 3, g.StepCount())
}

func TestCompareStrategiesAgree(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	rep, err := CompareStrategies(cfg, 10, Options{Workers: 4})
	require.NoError(t, err)
	assert.Nil(t, rep.Mismatch)
	assert.Equal(t, 10, rep.Steps)
	assert.Equal(t, 10*600, rep.Compared+rep.Capped)
}
