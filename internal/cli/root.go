package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wavescan/internal/config"
	"wavescan/internal/logging"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "wavescan",
		Short: "Wavescan - Elliott wave candidate detection",
		Long: `Wavescan detects and ranks Elliott wave patterns in swing-point series.

It reads already-extracted swing points (CSV or JSON), searches them for
impulse and correction candidates under the wave rule grammar, and prints
a ranked, confidence-calibrated pattern set.

Use 'wavescan help <command>' for more information about a command.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/wavescan)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newTuneCmd(app))

	return rootCmd
}
