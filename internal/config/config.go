package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// OutputDir receives charts and reports given by bare file name.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Charts
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`
	ChartFormat   string  `mapstructure:"chart_format" yaml:"chart_format"`

	// Statistics
	ForecastHorizon    int     `mapstructure:"forecast_horizon" yaml:"forecast_horizon"`
	Alpha              float64 `mapstructure:"alpha" yaml:"alpha"`
	CriticalValue      float64 `mapstructure:"critical_value" yaml:"critical_value"`
	PowerMaxIterations int     `mapstructure:"power_max_iterations" yaml:"power_max_iterations"`
	PowerDecimals      int     `mapstructure:"power_decimals" yaml:"power_decimals"`
	ConsumptionScale   float64 `mapstructure:"consumption_scale" yaml:"consumption_scale"`
	OutlierThreshold   float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
}

// Defaults returns the built-in configuration.
func Defaults() Global {
	return Global{
		ChartWidthIn:       10,
		ChartHeightIn:      5,
		ChartFormat:        "png",
		ForecastHorizon:    5,
		Alpha:              0.05,
		PowerMaxIterations: 100,
		PowerDecimals:      4,
		ConsumptionScale:   1e6,
		OutlierThreshold:   3.5,
	}
}

// Dir returns ~/.statloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".statloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.statloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("STATLOOM")
	v.AutomaticEnv()

	// Defaults
	d := Defaults()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("chart_width_in", d.ChartWidthIn)
	v.SetDefault("chart_height_in", d.ChartHeightIn)
	v.SetDefault("chart_format", d.ChartFormat)
	v.SetDefault("forecast_horizon", d.ForecastHorizon)
	v.SetDefault("alpha", d.Alpha)
	v.SetDefault("critical_value", d.CriticalValue)
	v.SetDefault("power_max_iterations", d.PowerMaxIterations)
	v.SetDefault("power_decimals", d.PowerDecimals)
	v.SetDefault("consumption_scale", d.ConsumptionScale)
	v.SetDefault("outlier_threshold", d.OutlierThreshold)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit or malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %v", c.Alpha)
	}
	if c.ChartWidthIn <= 0 || c.ChartHeightIn <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v", c.ChartWidthIn, c.ChartHeightIn)
	}
	if c.ForecastHorizon < 0 {
		return fmt.Errorf("forecast_horizon must be >= 0, got %d", c.ForecastHorizon)
	}
	if c.PowerMaxIterations <= 0 || c.PowerDecimals <= 0 {
		return fmt.Errorf("power_max_iterations and power_decimals must be positive")
	}
	if c.ConsumptionScale == 0 {
		return fmt.Errorf("consumption_scale must be non-zero")
	}
	return nil
}
