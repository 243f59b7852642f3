package cmd

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

// viewCmd opens the raylib viewer
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Run the simulation in a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Cfg()

		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Flock")
		defer rl.CloseWindow()
		rl.SetExitKey(0)
		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		g, err := game.New(cfg, gameOptions(false))
		if err != nil {
			return err
		}
		defer g.Unload()

		for !rl.WindowShouldClose() {
			g.Update()
			g.Draw()

			if maxSteps > 0 && g.StepCount() >= maxSteps {
				break
			}
		}
		return nil
	},
}

func init() {
	addSimFlags(viewCmd)
	rootCmd.AddCommand(viewCmd)
}
