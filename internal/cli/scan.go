package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "wavescan/internal/errors"
	"wavescan/internal/logging"
	"wavescan/internal/signals"
	"wavescan/internal/wave"
	"wavescan/internal/wave/engine"
	"wavescan/internal/wave/fibscan"
	"wavescan/internal/wave/swingio"
	"wavescan/pkg/utils"
)

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <swings-file>",
		Short: "Detect wave patterns in a swing-point file",
		Long: `Scan a swing-point series for impulse and correction candidates.

The input file holds already-extracted swing points, either CSV
(index,timestamp,price,kind) or a JSON array of swing objects. The
format is inferred from the file extension unless --format is given.

With --coarse, the coarse-timeframe file seeds the search and the
main file is scanned only inside confirmed coarse pattern windows.`,
		Example: `  wavescan scan swings.csv
  wavescan scan swings.json --trend up --min-confidence 0.6
  wavescan scan fine.csv --coarse daily.csv
  wavescan scan swings.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := args[0]

			format, _ := cmd.Flags().GetString("format")
			coarsePath, _ := cmd.Flags().GetString("coarse")
			trendFlag, _ := cmd.Flags().GetString("trend")
			volatility, _ := cmd.Flags().GetFloat64("volatility")
			withSignal, _ := cmd.Flags().GetBool("signal")
			showMargins, _ := cmd.Flags().GetBool("margins")

			opts := app.Config.Options()
			if cmd.Flags().Changed("skip") {
				opts.SkipN, _ = cmd.Flags().GetInt("skip")
			}
			if cmd.Flags().Changed("max-gap") {
				opts.MaxGap, _ = cmd.Flags().GetInt("max-gap")
			}
			if cmd.Flags().Changed("beam") {
				opts.BeamWidth, _ = cmd.Flags().GetInt("beam")
			}
			if cmd.Flags().Changed("min-confidence") {
				opts.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")
			}
			if cmd.Flags().Changed("diagonal") {
				opts.AllowDiagonal, _ = cmd.Flags().GetBool("diagonal")
			}

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

			logger := logging.WithInput(app.Logger, path)
			eng := engine.New(engine.WithSecondary(fibscan.New(0)))

			start := time.Now()
			var result *engine.Result
			if coarsePath != "" {
				coarse, err := readSwings(coarsePath, format)
				if err != nil {
					output.Error("Failed to read %s: %v", coarsePath, err)
					return err
				}
				result, err = eng.DetectCascade(coarse, swings, opts, env)
				if err != nil {
					output.Error("Detection failed: %v", err)
					return err
				}
			} else {
				result, err = eng.Detect(swings, opts, env)
				if err != nil {
					output.Error("Detection failed: %v", err)
					return err
				}
			}
			logging.LogScan(logger, len(result.Patterns), result.Diagnostics, time.Since(start))

			var sig *signals.Signal
			if withSignal {
				s := signals.Generate(result.Patterns, signals.Config{
					MinConfidence: app.Config.Signals.MinConfidence,
				})
				sig = &s
			}

			if output.IsJSON() {
				payload := map[string]interface{}{
					"patterns":    patternsJSON(result.Patterns),
					"diagnostics": result.Diagnostics,
				}
				if sig != nil {
					payload["signal"] = signalJSON(sig)
				}
				return output.JSON(payload)
			}

			printPatterns(output, result, showMargins)
			if sig != nil {
				printSignal(output, sig)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "", "input format: csv or json (default: by extension)")
	cmd.Flags().String("coarse", "", "coarse-timeframe swing file for cascade seeding")
	cmd.Flags().String("trend", "", "external trend context: up, down, or flat")
	cmd.Flags().Float64("volatility", 0, "recent volatility estimate in price units")
	cmd.Flags().Int("skip", 0, "noise points that may be merged away")
	cmd.Flags().Int("max-gap", 0, "maximum swing gap a leg may span")
	cmd.Flags().Int("beam", 0, "beam width of the candidate search")
	cmd.Flags().Float64("min-confidence", 0, "confidence floor for ranked output")
	cmd.Flags().Bool("diagonal", false, "allow diagonal wave-4 overlap")
	cmd.Flags().Bool("signal", false, "derive a trade signal from the best pattern")
	cmd.Flags().Bool("margins", false, "print per-rule margins for each pattern")

	return cmd
}

// readSwings loads a swing file, choosing the codec from the format
// flag or the file extension.
func readSwings(path, format string) ([]wave.SwingPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: swing file %s", apperrors.ErrDataNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	if format == "" {
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = "json"
		} else {
			format = "csv"
		}
	}
	switch strings.ToLower(format) {
	case "json":
		return swingio.ReadJSON(f)
	case "csv":
		return swingio.ReadCSV(f)
	default:
		return nil, fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}

func parseTrend(s string) (wave.Direction, error) {
	switch strings.ToLower(s) {
	case "", "flat", "none":
		return wave.DirFlat, nil
	case "up", "bull", "bullish":
		return wave.DirUp, nil
	case "down", "bear", "bearish":
		return wave.DirDown, nil
	default:
		return wave.DirFlat, fmt.Errorf("unknown trend %q (want up, down, or flat)", s)
	}
}

func printPatterns(output *Output, result *engine.Result, showMargins bool) {
	d := result.Diagnostics
	output.Info("Explored %d nodes, pruned %d, suppressed %d overlaps",
		d.Explored, d.Pruned, d.Suppressed)
	if d.BudgetExhausted {
		output.Warning("Node budget exhausted; result may be incomplete")
	}

	if len(result.Patterns) == 0 {
		output.Info("No patterns found")
		return
	}

	output.Success("Found %d pattern(s)", len(result.Patterns))
	output.Printf("%-4s %-18s %-12s %-22s %-9s %-7s %-6s %s\n",
		"#", "TYPE", "SPAN", "PRICES", "SCORE", "CONF", "AGREE", "DIR")
	for i, p := range result.Patterns {
		dir := "flat"
		switch p.Direction() {
		case wave.DirUp:
			dir = "up"
		case wave.DirDown:
			dir = "down"
		}
		agree := "-"
		if p.Agreement {
			agree = "yes"
		}
		output.Printf("%-4d %-18s %-12s %-22s %-9s %-7s %-6s %s\n",
			i+1, string(p.Type), utils.FormatSpan(p.StartIndex(), p.EndIndex()),
			priceRange(p), utils.FormatRatio(p.Score), utils.FormatPercent(p.Confidence), agree, dir)
		if showMargins {
			for _, name := range sortedMarginNames(p.Margins) {
				output.Printf("     %-28s %s\n", name, utils.FormatRatio(p.Margins[name]))
			}
		}
	}
}

// priceRange renders the first and last pattern price for the table.
func priceRange(p wave.WavePattern) string {
	if len(p.Points) == 0 {
		return "-"
	}
	first := utils.FormatPrice(p.Points[0].Price)
	last := utils.FormatPrice(p.Points[len(p.Points)-1].Price)
	return first + " -> " + last
}

func sortedMarginNames(margins map[string]float64) []string {
	names := make([]string, 0, len(margins))
	for name := range margins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printSignal(output *Output, sig *signals.Signal) {
	switch sig.Side {
	case signals.SideBuy:
		output.Success("Signal: BUY (%s, confidence %s)", sig.Reason, utils.FormatPercent(sig.Confidence))
	case signals.SideSell:
		output.Success("Signal: SELL (%s, confidence %s)", sig.Reason, utils.FormatPercent(sig.Confidence))
	default:
		output.Info("Signal: FLAT (%s)", sig.Reason)
	}
}

func patternsJSON(patterns []wave.WavePattern) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(patterns))
	for _, p := range patterns {
		points := make([]map[string]interface{}, 0, len(p.Points))
		for _, pt := range p.Points {
			points = append(points, map[string]interface{}{
				"index": pt.Index,
				"price": pt.Price,
			})
		}
		out = append(out, map[string]interface{}{
			"type":       string(p.Type),
			"start":      p.StartIndex(),
			"end":        p.EndIndex(),
			"direction":  int(p.Direction()),
			"score":      p.Score,
			"confidence": p.Confidence,
			"agreement":  p.Agreement,
			"points":     points,
			"margins":    p.Margins,
			"meta":       p.Meta,
		})
	}
	return out
}

func signalJSON(sig *signals.Signal) map[string]interface{} {
	return map[string]interface{}{
		"side":       string(sig.Side),
		"confidence": sig.Confidence,
		"reason":     sig.Reason,
	}
}
