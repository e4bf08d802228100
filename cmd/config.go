package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/statloom-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/statloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set StatLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		if c.OutputDir != "" {
			fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		}
		fmt.Fprintf(out, "chart_width_in: %g\n", c.ChartWidthIn)
		fmt.Fprintf(out, "chart_height_in: %g\n", c.ChartHeightIn)
		fmt.Fprintf(out, "chart_format: %s\n", c.ChartFormat)
		fmt.Fprintf(out, "forecast_horizon: %d\n", c.ForecastHorizon)
		fmt.Fprintf(out, "alpha: %g\n", c.Alpha)
		if c.CriticalValue != 0 {
			fmt.Fprintf(out, "critical_value: %g\n", c.CriticalValue)
		}
		fmt.Fprintf(out, "power_max_iterations: %d\n", c.PowerMaxIterations)
		fmt.Fprintf(out, "power_decimals: %d\n", c.PowerDecimals)
		fmt.Fprintf(out, "consumption_scale: %g\n", c.ConsumptionScale)
		fmt.Fprintf(out, "outlier_threshold: %g\n", c.OutlierThreshold)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Saving over a file that failed to load would replace it with defaults.
		if cfgErr != nil {
			return fmt.Errorf("config not saved, fix the existing file first: %w", cfgErr)
		}
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		if err := setKey(&next, key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*cfg = next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "output_dir":
		c.OutputDir = val
	case "chart_format":
		f := strings.ToLower(strings.TrimPrefix(val, "."))
		if !contains(chart.Formats, f) {
			return fmt.Errorf("invalid chart_format: %s (use one of %s)", val, strings.Join(chart.Formats, ", "))
		}
		c.ChartFormat = f
	case "chart_width_in", "chart_height_in", "alpha", "critical_value", "consumption_scale", "outlier_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		switch key {
		case "chart_width_in":
			c.ChartWidthIn = f
		case "chart_height_in":
			c.ChartHeightIn = f
		case "alpha":
			c.Alpha = f
		case "critical_value":
			c.CriticalValue = f
		case "consumption_scale":
			c.ConsumptionScale = f
		case "outlier_threshold":
			c.OutlierThreshold = f
		}
	case "forecast_horizon", "power_max_iterations", "power_decimals":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		switch key {
		case "forecast_horizon":
			c.ForecastHorizon = i
		case "power_max_iterations":
			c.PowerMaxIterations = i
		case "power_decimals":
			c.PowerDecimals = i
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
