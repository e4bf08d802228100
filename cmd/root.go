package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/statloom-cli/internal/config"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	outputFormat string
	outputPath   string

	// Loaded configuration
	cfg *cfgpkg.Global
	// cfgErr is the error from the last load; cfg then holds the defaults.
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "statloom",
	Short: "StatLoom CLI: statistics and charts over CSV/XLSX tables",
	Long: `StatLoom reads a CSV, TSV or XLSX table and runs one statistical operation on it:
descriptive statistics, Z and t tests, correlation and regression tables with
forecasts, one-way ANOVA, power-method eigenvalues, consumption helpers, and charts.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(setupLogging, loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.statloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", report.FormatMarkdown, "output format: markdown | json")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of stdout")
}

func setupLogging() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	cfgErr = err
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		logrus.WithError(err).Warn("failed to load config, using defaults")
		d := cfgpkg.Defaults()
		cfg = &d
		return
	}
	cfg = c
	logrus.WithFields(logrus.Fields{
		"alpha":      cfg.Alpha,
		"horizon":    cfg.ForecastHorizon,
		"output_dir": cfg.OutputDir,
	}).Debug("config loaded")
}

// settings returns the loaded configuration or the defaults.
func settings() *cfgpkg.Global {
	if cfg == nil {
		d := cfgpkg.Defaults()
		return &d
	}
	return cfg
}

// emit writes an envelope to --output or the command's stdout.
func emit(cmd *cobra.Command, env *report.Envelope) error {
	path := outputPath
	if path != "" {
		path = resolvePath(path)
	}
	if err := env.Write(cmd.OutOrStdout(), outputFormat, path); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s report to %s\n", env.Command, path)
	}
	return nil
}
