package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

var (
	maxSteps       int     // Stop after N steps, 0 = unlimited
	outputDir      string  // CSV output directory
	strategy       string  // Spatial index override
	rebuildEvery   int     // Tree rebuild cadence override
	seed           int64   // Added to every flock seed
	logStats       bool    // Log every stats window
	statsWindow    float64 // Stats window override in seconds
	stepsPerUpdate int     // Steps per update call
	workers        int     // Worker pool size override
)

// runCmd runs the simulation without graphics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := game.New(config.Cfg(), gameOptions(true))
		if err != nil {
			return err
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", seed,
			"max_steps", maxSteps,
			"steps_per_update", stepsPerUpdate,
			"output_dir", outputDir,
		)

		start := time.Now()
		for maxSteps == 0 || g.StepCount() < maxSteps {
			if err := g.UpdateHeadless(); err != nil {
				return err
			}
		}
		slog.Info("max steps reached",
			"step", g.StepCount(),
			"sim_time", g.SimTime(),
			"wall_time", time.Since(start).String(),
		)
		return nil
	},
}

func gameOptions(headless bool) game.Options {
	return game.Options{
		Seed:           seed,
		LogStats:       logStats,
		StatsWindowSec: statsWindow,
		OutputDir:      outputDir,
		Headless:       headless,
		StepsPerUpdate: stepsPerUpdate,
		Strategy:       strategy,
		RebuildEvery:   rebuildEvery,
		Workers:        workers,
	}
}

// addSimFlags registers the flags shared by run and view.
func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Stop after N steps (0 = unlimited)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Spatial index: tree or brute (empty = use config)")
	cmd.Flags().IntVar(&rebuildEvery, "rebuild-every", 0, "Tree rebuild cadence in steps (0 = use config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Offset added to every flock seed")
	cmd.Flags().IntVar(&stepsPerUpdate, "steps-per-update", 0, "Simulation steps per update call (0 = use config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (0 = use config)")
	cmd.Flags().Float64Var(&statsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	cmd.Flags().BoolVar(&logStats, "log-stats", false, "Output stats via slog")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
}

func init() {
	addSimFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
