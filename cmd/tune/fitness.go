package main

import (
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxSteps    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	workers     int

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxSteps int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxSteps:    maxSteps,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
		workers:     1,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// BestFitness returns the lowest average fitness seen so far.
func (fe *FitnessEvaluator) BestFitness() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestFitness
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(x, s)
			if err != nil {
				slog.Warn("evaluation failed", "seed", s, "error", err)
				return
			}
			results[idx] = fe.computeQuality(windows)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, q := range results {
		total += q
	}
	quality := total / float64(len(fe.seeds))
	fitness := -quality

	fe.mu.Lock()
	fe.bestFitness = math.Min(fe.bestFitness, fitness)
	fe.lastQuality = quality
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) ([][]telemetry.FlockStats, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	g, err := game.New(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Workers:        fe.workers,
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	var windows [][]telemetry.FlockStats
	g.SetStatsCallback(func(stats []telemetry.FlockStats) {
		windows = append(windows, slices.Clone(stats))
	})

	for g.StepCount() < fe.maxSteps {
		if err := g.UpdateHeadless(); err != nil {
			// A failed step ends the run; the windows so far still count.
			slog.Warn("run stopped early", "seed", seed, "step", g.StepCount(), "error", err)
			break
		}
	}
	return windows, nil
}

// copyConfig returns a copy of the base config that can be edited freely.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Flocks = slices.Clone(fe.baseConfig.Flocks)
	return &cfg
}

// Quality component weights.
const (
	qualityWeightOrder     = 0.45
	qualityWeightStability = 0.20
	qualityWeightTarget    = 0.25
	qualityWeightCapacity  = 0.10

	qualityWarmupWindows = 2   // skip first N windows
	targetScale          = 20. // world units at which the target score falls to 1/e
)

// computeQuality computes flocking quality in [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows [][]telemetry.FlockStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var orderSum, targetSum, capacitySum float64
	var n int
	polarization := make([]float64, 0, len(valid))

	for _, w := range valid {
		var windowPol float64
		for _, s := range w {
			if s.Count == 0 {
				continue
			}
			orderSum += s.Polarization
			targetSum += math.Exp(-s.TargetDistMean / targetScale)
			capacitySum += 1 - float64(s.CappedAgents)/float64(s.Count)
			windowPol += s.Polarization
			n++
		}
		if len(w) > 0 {
			polarization = append(polarization, windowPol/float64(len(w)))
		}
	}
	if n == 0 {
		return 0
	}

	stabilityScore := 0.0
	if len(polarization) >= 2 {
		c := cv(polarization)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightOrder*orderSum/float64(n) +
		qualityWeightStability*stabilityScore +
		qualityWeightTarget*targetSum/float64(n) +
		qualityWeightCapacity*capacitySum/float64(n)

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
