package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/rotator/internal/config"
	"github.com/mj1618/rotator/internal/logging"
	"github.com/mj1618/rotator/internal/output"
	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	// appConfig is loaded by the root command before any subcommand runs.
	appConfig *config.Config
	// sessionLog keeps the records of this process for the session file.
	sessionLog *logging.Recorder
)

var rootCmd = &cobra.Command{
	Use:   "rotator",
	Short: "Rotate focus across game client windows",
	Long: `Cycle keyboard focus and screen position across a fixed roster of game
client windows, classify the on-screen state by template matching, and
drive a serial-attached microcontroller that performs input actions.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	rootCmd.PersistentFlags().String("config", config.DefaultFileName, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json (overrides config)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = cfg

		level, _ := rootCmd.PersistentFlags().GetString("log-level")
		if level == "" {
			level = cfg.Log.Level
		}
		logFormat, _ := rootCmd.PersistentFlags().GetString("log-format")
		if logFormat == "" {
			logFormat = cfg.Log.Format
		}
		rec, err := logging.Setup(os.Stderr, level, logFormat)
		if err != nil {
			return err
		}
		sessionLog = rec

		// Use the root persistent flag directly to avoid conflicts with
		// subcommand local flags (e.g. capture --format png).
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		if pretty, err := rootCmd.PersistentFlags().GetBool("pretty"); err == nil && pretty {
			output.PrettyOutput = true
		}
		return nil
	}
}
