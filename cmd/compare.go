package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

var compareSteps int

// compareCmd checks that both index strategies classify identically
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Step brute-force and tree indexes side by side and report the first differing neighbor set",
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := game.CompareStrategies(config.Cfg(), compareSteps, game.Options{Seed: seed, Workers: workers})
		if err != nil {
			return err
		}

		if m := rep.Mismatch; m != nil {
			slog.Warn("strategies disagree",
				"step", m.Step,
				"flock", m.Flock,
				"agent", m.Agent,
				"tier", m.Tier,
			)
			return fmt.Errorf("neighbor sets differ at step %d (%s agent %d, %s)", m.Step, m.Flock, m.Agent, m.Tier)
		}
		slog.Info("strategies agree",
			"steps", rep.Steps,
			"compared", rep.Compared,
			"capped_skipped", rep.Capped,
		)
		return nil
	},
}

func init() {
	compareCmd.Flags().IntVar(&compareSteps, "steps", 100, "Number of steps to compare")
	compareCmd.Flags().Int64Var(&seed, "seed", 0, "Offset added to every flock seed")
	compareCmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (0 = use config)")
	rootCmd.AddCommand(compareCmd)
}
