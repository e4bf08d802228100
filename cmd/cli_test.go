package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const fixtureCSV = `label,a,b,c,pop,pc,prod
S1,10,8,5,1000000,2,3
S2,12,9,6,2000000,1.5,2
S3,11,7,7,500000,4,2.5
S4,13,8,6,1500000,2,3.5
S5,14,10,8,1000000,3,2
`

// resetFlags restores every flag to its default so bound variables and
// Changed state do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setupHome isolates config under a temp HOME and writes the fixture table.
func setupHome(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "data.csv")
	if err := os.WriteFile(data, []byte(fixtureCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return home, data
}

func TestCLI_Describe(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "describe", data, "-c", "a,b")
	for _, want := range []string{"[DATASET SUMMARY]", "[STATISTICS]", "- a (n=5)", "- b (n=5)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("describe output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "- pop (") {
		t.Fatalf("unselected column described:\n%s", out)
	}
}

func TestCLI_DescribeJSONEnvelope(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "describe", data, "--columns", "a", "--format", "json")
	var env struct {
		ID      string `json:"id"`
		Command string `json:"command"`
		Result  struct {
			Rows    int `json:"rows"`
			Columns []struct {
				Name  string  `json:"name"`
				Mean  float64 `json:"mean"`
				Count int     `json:"count"`
			} `json:"columns"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, out)
	}
	if env.ID == "" || env.Command != "describe" {
		t.Fatalf("unexpected envelope header: %+v", env)
	}
	if env.Result.Rows != 5 || len(env.Result.Columns) != 1 {
		t.Fatalf("unexpected result: %+v", env.Result)
	}
	if c := env.Result.Columns[0]; c.Name != "a" || c.Count != 5 || c.Mean != 12 {
		t.Fatalf("unexpected column stats: %+v", c)
	}
}

func TestCLI_HypothesisTests(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "ttest", data, "--a", "a", "--b", "b")
	if !strings.Contains(out, "[T-TEST]") || !strings.Contains(out, "Reject Null Hypothesis") {
		t.Fatalf("unexpected ttest output:\n%s", out)
	}
	out = runCmd(t, "ztest", data, "--a", "a", "--b", "b", "--critical", "100")
	if !strings.Contains(out, "[Z-TEST]") || !strings.Contains(out, "critical value: 100.0000") || !strings.Contains(out, "Null Hypothesis Accepted") {
		t.Fatalf("unexpected ztest output:\n%s", out)
	}
	if _, err := execute(t, "ttest", data, "--a", "a"); err == nil {
		t.Fatalf("expected error without --b")
	}
}

func TestCLI_Compare(t *testing.T) {
	setupHome(t)
	if out := runCmd(t, "compare", "2.5", "1.96"); !strings.Contains(out, "Reject Null Hypothesis") {
		t.Fatalf("expected rejection:\n%s", out)
	}
	// Equal values are not strictly greater.
	if out := runCmd(t, "compare", "1.96", "1.96"); !strings.Contains(out, "Null Hypothesis Accepted") {
		t.Fatalf("expected acceptance:\n%s", out)
	}
	if _, err := execute(t, "compare", "abc", "1"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := execute(t, "compare", "1"); err == nil {
		t.Fatalf("expected error for a missing critical value")
	}
}

func TestCLI_CompareNegativeValues(t *testing.T) {
	setupHome(t)
	out := runCmd(t, "compare", "-2.5", "1.645")
	if !strings.Contains(out, "statistic: -2.5000") || !strings.Contains(out, "Null Hypothesis Accepted") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	out = runCmd(t, "compare", "-1", "-1.645", "--format", "json")
	var env struct {
		Command string `json:"command"`
		Result  struct {
			Critical  float64 `json:"critical"`
			Statistic float64 `json:"statistic"`
			Decision  string  `json:"decision"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if env.Command != "compare" || env.Result.Statistic != -1 || env.Result.Critical != -1.645 || env.Result.Decision != "Reject Null Hypothesis" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if _, err := execute(t, "compare", "-2.5", "1", "--bogus"); err == nil {
		t.Fatalf("expected error for an unknown flag")
	}
}

func TestCLI_CorrelateAndRegress(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "correlate", data, "-x", "a", "-y", "b")
	if !strings.Contains(out, "[CORRELATION TABLE]") || !strings.Contains(out, "n: 5") {
		t.Fatalf("unexpected correlate output:\n%s", out)
	}
	out = runCmd(t, "regress", data, "-y", "a", "--horizon", "2")
	for _, want := range []string{"[REGRESSION TABLE]", "[MODEL]", "[FORECASTS]", "x=6", "x=7"} {
		if !strings.Contains(out, want) {
			t.Fatalf("regress output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "x=8") {
		t.Fatalf("horizon not honored:\n%s", out)
	}
}

func TestCLI_RegressUsesConfigHorizon(t *testing.T) {
	_, data := setupHome(t)
	runCmd(t, "config", "set", "forecast_horizon", "0")
	out := runCmd(t, "regress", data, "-y", "a")
	if strings.Contains(out, "[FORECASTS]") {
		t.Fatalf("expected no forecasts with forecast_horizon 0:\n%s", out)
	}
}

func TestCLI_ANOVA(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "anova", data, "-c", "a,b,c")
	for _, want := range []string{"[GROUPS]", "[ANOVA]", "[DECISION]", "- a (n=5)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("anova output missing %q:\n%s", want, out)
		}
	}
	if _, err := execute(t, "anova", data, "-c", "a"); err == nil {
		t.Fatalf("expected error for a single group")
	}
	if help := runCmd(t, "anova", "--help"); !strings.Contains(help, "column totals") || !strings.Contains(help, "row totals") {
		t.Fatalf("help should describe the SSB formula:\n%s", help)
	}
}

func TestCLI_Eigen(t *testing.T) {
	setupHome(t)
	out := runCmd(t, "eigen", "--matrix", "2,1,0;1,2,1;0,1,2")
	if !strings.Contains(out, "eigenvalue: 3.4142") {
		t.Fatalf("unexpected eigen output:\n%s", out)
	}
	if _, err := execute(t, "eigen", "--matrix", "1,2;3"); err == nil {
		t.Fatalf("expected error for ragged matrix")
	}
	if _, err := execute(t, "eigen", "--matrix", "1,2,3;4,5,6"); err == nil {
		t.Fatalf("expected error for non-square matrix")
	}
	if _, err := execute(t, "eigen", "--matrix", "2,1;1,2", "--decimals", "0"); err == nil {
		t.Fatalf("expected error for --decimals 0")
	}
	out = runCmd(t, "eigen", "--matrix", "2,1,0;1,2,1;0,1,2", "--max-iterations", "3")
	if !strings.Contains(out, "iterations: 3\n") || !strings.Contains(out, "iteration limit") {
		t.Fatalf("expected the iteration limit to be reported:\n%s", out)
	}
}

func TestCLI_Consumption(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "consumption", data, "--population", "pop", "--per-capita", "pc", "--label", "label", "--format", "json")
	var env struct {
		Result consumptionResult `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []float64{2, 3, 2, 3, 3}
	for i, w := range want {
		if env.Result.Consumption[i] != w {
			t.Fatalf("consumption[%d]=%v want %v", i, env.Result.Consumption[i], w)
		}
	}
	if env.Result.Total != 13 || env.Result.Labels[0] != "S1" {
		t.Fatalf("unexpected result: %+v", env.Result)
	}
}

func TestCLI_Charts(t *testing.T) {
	home, data := setupHome(t)
	cases := []struct {
		name string
		args []string
	}{
		{"bar", []string{"chart", "bar", data, "--label", "label", "-y", "a,b", "--colors", "red,green"}},
		{"line", []string{"chart", "line", data, "--label", "label", "-y", "a"}},
		{"normal", []string{"chart", "normal", "--z", "1.96"}},
		{"scatter", []string{"chart", "scatter", data, "-x", "a", "-y", "b"}},
		{"regression", []string{"chart", "regression", data, "-y", "a"}},
		{"compare", []string{"chart", "compare", data, "--label", "label", "--production", "prod", "--consumption", "pc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(home, "charts", tc.name+".svg")
			out := runCmd(t, append(tc.args, "--file", path)...)
			if !strings.Contains(out, "[FILES]") || !strings.Contains(out, path) {
				t.Fatalf("chart report missing file:\n%s", out)
			}
			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read chart: %v", err)
			}
			if !bytes.Contains(b, []byte("<svg")) {
				t.Fatalf("%s is not an svg", path)
			}
		})
	}
	if _, err := execute(t, "chart", "normal", "--z", "4.5", "--file", filepath.Join(home, "n.svg")); err == nil {
		t.Fatalf("expected error for z outside the shaded range")
	}
	if _, err := execute(t, "chart", "bar", data, "--label", "label", "-y", "a", "--colors", "mauve", "--file", filepath.Join(home, "b.svg")); err == nil {
		t.Fatalf("expected error for unknown color")
	}
}

func TestCLI_ChartDefaultsToOutputDir(t *testing.T) {
	home, _ := setupHome(t)
	outDir := filepath.Join(home, "out")
	runCmd(t, "config", "set", "output_dir", outDir)
	runCmd(t, "config", "set", "chart_format", "svg")
	runCmd(t, "chart", "normal")
	if _, err := os.Stat(filepath.Join(outDir, "normal.svg")); err != nil {
		t.Fatalf("expected chart under output_dir: %v", err)
	}
}

func TestCLI_OutputFile(t *testing.T) {
	home, _ := setupHome(t)
	dest := filepath.Join(home, "reports", "eigen.json")
	out := runCmd(t, "eigen", "--matrix", "2,1;1,2", "--format", "json", "-o", dest)
	if out != "" {
		t.Fatalf("expected nothing on stdout, got %q", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), `"command": "eigen"`) {
		t.Fatalf("unexpected report:\n%s", b)
	}
	if _, err := execute(t, "compare", "1", "2", "--format", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home, _ := setupHome(t)
	runCmd(t, "config", "set", "alpha", "0.01")
	runCmd(t, "config", "set", "forecast_horizon", "3")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "alpha: 0.01") || !strings.Contains(out, "forecast_horizon: 3") {
		t.Fatalf("unexpected config show:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".statloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	for _, args := range [][]string{
		{"config", "set", "alpha", "2"},
		{"config", "set", "chart_format", "bmp"},
		{"config", "set", "power_decimals", "x"},
		{"config", "set", "nope", "1"},
	} {
		if _, err := execute(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestCLI_ConfigSetKeepsBrokenFile(t *testing.T) {
	home, _ := setupHome(t)
	dir := filepath.Join(home, ".statloom")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	broken := "alpha: 2\noutput_dir: /data\n"
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := execute(t, "config", "set", "chart_format", "svg"); err == nil {
		t.Fatalf("expected error while the config file is invalid")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(b) != broken {
		t.Fatalf("config file was rewritten:\n%s", b)
	}
	// Read-only commands still fall back to the defaults.
	if out := runCmd(t, "config", "show"); !strings.Contains(out, "alpha: 0.05") {
		t.Fatalf("expected default alpha:\n%s", out)
	}
}

func TestCLI_RegressKeepsRowPositions(t *testing.T) {
	home, _ := setupHome(t)
	data := filepath.Join(home, "gaps.csv")
	if err := os.WriteFile(data, []byte("year,value\n2001,10\n2002,\n2003,14\n2004,16\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := runCmd(t, "regress", data, "-y", "value", "--horizon", "1", "--format", "json")
	var env struct {
		Result struct {
			Rows []struct {
				X float64 `json:"x"`
			} `json:"rows"`
			Forecasts []struct {
				X float64 `json:"x"`
			} `json:"forecasts"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	var xs []float64
	for _, r := range env.Result.Rows {
		xs = append(xs, r.X)
	}
	if len(xs) != 3 || xs[0] != 1 || xs[1] != 3 || xs[2] != 4 {
		t.Fatalf("x positions = %v, want [1 3 4]", xs)
	}
	if len(env.Result.Forecasts) != 1 || env.Result.Forecasts[0].X != 5 {
		t.Fatalf("forecasts = %+v, want one at x=5", env.Result.Forecasts)
	}
}

func TestCLI_MissingColumn(t *testing.T) {
	_, data := setupHome(t)
	if _, err := execute(t, "correlate", data, "-x", "a", "-y", "missing"); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}
