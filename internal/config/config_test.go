package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Global{
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
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestSaveThenLoadAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Alpha = 0.01
	c.ChartFormat = "svg"
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".statloom", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Alpha != 0.01 || got.ChartFormat != "svg" {
		t.Fatalf("reloaded = %#v", got)
	}

	t.Setenv("STATLOOM_FORECAST_HORIZON", "8")
	got, err = Load("")
	if err != nil {
		t.Fatalf("env load: %v", err)
	}
	if got.ForecastHorizon != 8 {
		t.Fatalf("forecast_horizon = %d, want 8 from env", got.ForecastHorizon)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("alpha: 0.1\npower_decimals: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Alpha != 0.1 || c.PowerDecimals != 6 || c.ForecastHorizon != 5 {
		t.Fatalf("config = %#v", c)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidateRejectsBadAlpha(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("alpha: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
