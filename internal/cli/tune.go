package cli

import (
	"time"

	"github.com/spf13/cobra"

	"wavescan/internal/logging"
	"wavescan/internal/wave/engine"
	"wavescan/internal/wave/fibscan"
	"wavescan/internal/wave/tuner"
	"wavescan/pkg/utils"
)

func newTuneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune <swings-file>",
		Short: "Grid-search engine options for a swing-point file",
		Long: `Run the detection pipeline once per grid point and report the
option set that yields the highest best-pattern confidence. Ties
prefer the cheaper configuration.

The grid dimensions come from the [tuner] config section and can be
overridden per run with flags.`,
		Example: `  wavescan tune swings.csv
  wavescan tune swings.csv --trend up
  wavescan tune swings.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := args[0]

			format, _ := cmd.Flags().GetString("format")
			trendFlag, _ := cmd.Flags().GetString("trend")
			volatility, _ := cmd.Flags().GetFloat64("volatility")

			trend, err := parseTrend(trendFlag)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			env := engine.Env{Trend: trend, Volatility: volatility}

			swings, err := readSwings(path, format)
			if err != nil {
				output.Error("Failed to read %s: %v", path, err)
				return err
			}

			grid := tuner.Grid{
				SkipN:      app.Config.Tuner.SkipN,
				MaxGap:     app.Config.Tuner.MaxGap,
				BeamWidths: app.Config.Tuner.BeamWidths,
			}

			logger := logging.WithInput(app.Logger, path)
			eng := engine.New(engine.WithSecondary(fibscan.New(0)))

			start := time.Now()
			result, err := tuner.Tune(eng, swings, app.Config.Options(), grid, env)
			if err != nil {
				output.Error("Tuning failed: %v", err)
				return err
			}
			logging.LogTune(logger, result.Evaluated, result.Patterns, result.BestConfidence, time.Since(start))

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"options": map[string]interface{}{
						"skip_n":     result.Options.SkipN,
						"max_gap":    result.Options.MaxGap,
						"beam_width": result.Options.BeamWidth,
					},
					"patterns":         result.Patterns,
					"best_score":       result.BestScore,
					"best_confidence":  result.BestConfidence,
					"evaluated":        result.Evaluated,
					"budget_exhausted": result.BudgetExhausted,
				})
			}

			output.Success("Evaluated %d configuration(s)", result.Evaluated)
			output.Printf("%-14s %d\n", "skip_n", result.Options.SkipN)
			output.Printf("%-14s %d\n", "max_gap", result.Options.MaxGap)
			output.Printf("%-14s %d\n", "beam_width", result.Options.BeamWidth)
			output.Printf("%-14s %d\n", "patterns", result.Patterns)
			output.Printf("%-14s %s\n", "best_score", utils.FormatRatio(result.BestScore))
			output.Printf("%-14s %s\n", "best_conf", utils.FormatPercent(result.BestConfidence))
			if result.BudgetExhausted {
				output.Warning("Node budget exhausted on at least one configuration")
			}
			return nil
		},
	}

	cmd.Flags().String("format", "", "input format: csv or json (default: by extension)")
	cmd.Flags().String("trend", "", "external trend context: up, down, or flat")
	cmd.Flags().Float64("volatility", 0, "recent volatility estimate in price units")

	return cmd
}
