package cmd

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/chart"
	"github.com/KaramelBytes/statloom-cli/internal/dataset"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/KaramelBytes/statloom-cli/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
)

var (
	chartInput   inputFlags
	chartFile    string
	chartTitle   string
	chartLabel   string
	chartX       string
	chartY       []string
	chartColors  []string
	chartZ       float64
	chartHorizon int
	chartProd    string
	chartCons    string
)

// chartResult is the JSON payload of every chart subcommand.
type chartResult struct {
	Kind   string   `json:"kind"`
	File   string   `json:"file"`
	Series []string `json:"series,omitempty"`
	// R is Pearson's r, set by scatter.
	R *float64 `json:"r,omitempty"`
}

var namedColors = map[string]color.Color{
	"red":   color.RGBA{R: 220, G: 30, B: 30, A: 255},
	"green": color.RGBA{R: 30, G: 150, B: 60, A: 255},
	"blue":  color.RGBA{R: 31, G: 119, B: 180, A: 255},
	"black": color.Black,
	"gray":  color.Gray{Y: 128},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Draw bar, line, normal, scatter, regression and comparison charts",
	Long: `Charts are written with gonum/plot. The image format follows the --file
extension; without --file the chart goes to <kind>.<chart_format> under output_dir.`,
}

var chartBarCmd = &cobra.Command{
	Use:   "bar <file>",
	Short: "Grouped bar chart of one or more columns per label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return categoryChart(cmd, "bar", args[0], chart.Bar)
	},
}

var chartLineCmd = &cobra.Command{
	Use:   "line <file>",
	Short: "Line chart of one or more columns per label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return categoryChart(cmd, "line", args[0], chart.Line)
	},
}

var chartNormalCmd = &cobra.Command{
	Use:   "normal",
	Short: "Standard normal curve with the upper tail from --z shaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := chart.Normal(chartZ)
		if err != nil {
			return err
		}
		return writeChart(cmd, "normal", "", p, chartResult{Kind: "normal"})
	},
}

var chartScatterCmd = &cobra.Command{
	Use:   "scatter <file>",
	Short: "Scatter plot of two columns with the fitted line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("x", chartX); err != nil {
			return err
		}
		ycol, err := singleY()
		if err != nil {
			return err
		}
		tbl, err := chartInput.load(args[0])
		if err != nil {
			return err
		}
		xs, ys, err := tbl.Pairs(chartX, ycol)
		if err != nil {
			return err
		}
		title := chartTitle
		if title == "" {
			title = fmt.Sprintf("Scatter plot of %s vs %s", chartX, ycol)
		}
		p, r, err := chart.Scatter(xs, ys, chartX, ycol, title)
		if err != nil {
			return err
		}
		return writeChart(cmd, "scatter", args[0], p, chartResult{Kind: "scatter", Series: []string{chartX, ycol}, R: &r})
	},
}

var chartRegressionCmd = &cobra.Command{
	Use:   "regression <file>",
	Short: "Observed values, regression line and forecasts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ycol, err := singleY()
		if err != nil {
			return err
		}
		tbl, err := chartInput.load(args[0])
		if err != nil {
			return err
		}
		horizon := chartHorizon
		if !cmd.Flags().Changed("horizon") {
			horizon = settings().ForecastHorizon
		}
		reg, err := fitRegression(tbl, chartX, ycol, horizon)
		if err != nil {
			return err
		}
		p, err := chart.RegressionPlot(reg, chartX, ycol)
		if err != nil {
			return err
		}
		return writeChart(cmd, "regression", args[0], p, chartResult{Kind: "regression", Series: []string{ycol}})
	},
}

var chartCompareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Production against consumption per state or region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("label", chartLabel); err != nil {
			return err
		}
		if err := requireFlag("production", chartProd); err != nil {
			return err
		}
		if err := requireFlag("consumption", chartCons); err != nil {
			return err
		}
		tbl, err := chartInput.load(args[0])
		if err != nil {
			return err
		}
		labels, series, err := categorySeries(tbl, chartLabel, []string{chartProd, chartCons})
		if err != nil {
			return err
		}
		p, err := chart.Compare(labels, series[0].Values, series[1].Values)
		if err != nil {
			return err
		}
		return writeChart(cmd, "compare", args[0], p, chartResult{Kind: "compare", Series: []string{chartProd, chartCons}})
	},
}

// categoryChart draws the --y columns against the --label column.
func categoryChart(cmd *cobra.Command, kind, path string, draw func([]string, []chart.Series, string, string) (*plot.Plot, error)) error {
	if err := requireFlag("label", chartLabel); err != nil {
		return err
	}
	if len(chartY) == 0 {
		return fmt.Errorf("--y is required")
	}
	tbl, err := chartInput.load(path)
	if err != nil {
		return err
	}
	labels, series, err := categorySeries(tbl, chartLabel, chartY)
	if err != nil {
		return err
	}
	for i, name := range chartColors {
		if i >= len(series) {
			break
		}
		c, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown color %q (use red, green, blue, black or gray)", name)
		}
		series[i].Color = c
	}
	title := chartTitle
	if title == "" {
		title = strings.Join(chartY, ", ")
	}
	p, err := draw(labels, series, title, chartLabel)
	if err != nil {
		return err
	}
	return writeChart(cmd, kind, path, p, chartResult{Kind: kind, Series: chartY})
}

// categorySeries reads the label column and one numeric series per column.
// Every cell must be present so values stay aligned with their labels.
func categorySeries(tbl *dataset.Table, labelCol string, cols []string) ([]string, []chart.Series, error) {
	labels, err := tbl.Strings(labelCol)
	if err != nil {
		return nil, nil, err
	}
	series := make([]chart.Series, 0, len(cols))
	for _, c := range cols {
		vals, err := tbl.Floats(c)
		if err != nil {
			return nil, nil, err
		}
		if len(vals) != len(labels) {
			return nil, nil, fmt.Errorf("column %q has %d values for %d labels", c, len(vals), len(labels))
		}
		series = append(series, chart.Series{Name: c, Values: vals})
	}
	return labels, series, nil
}

func singleY() (string, error) {
	if len(chartY) != 1 {
		return "", fmt.Errorf("--y takes exactly one column here")
	}
	return chartY[0], nil
}

// writeChart saves p to --file (or the default name) and emits a report
// listing the written file.
func writeChart(cmd *cobra.Command, kind, source string, p *plot.Plot, res chartResult) error {
	path := chartFile
	if path == "" {
		path = kind + "." + settings().ChartFormat
	}
	path, err := saveChart(p, path)
	if err != nil {
		return err
	}
	res.File = path
	md := fmt.Sprintf("[CHART]\nkind: %s\n", kind)
	if len(res.Series) > 0 {
		md += fmt.Sprintf("series: %s\n", strings.Join(res.Series, ", "))
	}
	if res.R != nil {
		md += fmt.Sprintf("pearson r: %.4f\n", *res.R)
	}
	env := report.New("chart "+kind, source, res, md)
	env.Files = append(env.Files, path)
	return emit(cmd, env)
}

// saveChart resolves path under output_dir and writes p with the configured size.
func saveChart(p *plot.Plot, path string) (string, error) {
	path = resolvePath(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
	}
	s := settings()
	if err := chart.Save(p, path, chart.Size{Width: s.ChartWidthIn, Height: s.ChartHeightIn}); err != nil {
		return "", err
	}
	logrus.WithField("file", path).Debug("chart saved")
	return path, nil
}

// saveRegressionChart backs regress --chart.
func saveRegressionChart(reg *analysis.Regression, path, xLabel string) (string, error) {
	p, err := chart.RegressionPlot(reg, xLabel, "")
	if err != nil {
		return "", err
	}
	return saveChart(p, path)
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartBarCmd, chartLineCmd, chartNormalCmd, chartScatterCmd, chartRegressionCmd, chartCompareCmd)

	chartCmd.PersistentFlags().StringVar(&chartFile, "file", "", "image file to write; the extension selects png, svg, pdf, ...")
	chartCmd.PersistentFlags().StringVar(&chartTitle, "title", "", "chart title")
	for _, c := range []*cobra.Command{chartBarCmd, chartLineCmd, chartScatterCmd, chartRegressionCmd, chartCompareCmd} {
		chartInput.register(c)
	}
	for _, c := range []*cobra.Command{chartBarCmd, chartLineCmd, chartCompareCmd} {
		c.Flags().StringVar(&chartLabel, "label", "", "category label column (required)")
	}
	for _, c := range []*cobra.Command{chartBarCmd, chartLineCmd, chartScatterCmd, chartRegressionCmd} {
		c.Flags().StringSliceVarP(&chartY, "y", "y", nil, "value column(s)")
	}
	for _, c := range []*cobra.Command{chartBarCmd, chartLineCmd} {
		c.Flags().StringSliceVar(&chartColors, "colors", nil, "series colors in order: red, green, blue, black, gray")
	}
	chartScatterCmd.Flags().StringVarP(&chartX, "x", "x", "", "X column (required)")
	chartRegressionCmd.Flags().StringVarP(&chartX, "x", "x", "", "X column (default: positions 1..n)")
	chartRegressionCmd.Flags().IntVar(&chartHorizon, "horizon", analysis.DefaultForecastHorizon, "number of positions to forecast (0 = none)")
	chartNormalCmd.Flags().Float64Var(&chartZ, "z", chart.DefaultHighlightZ, "shade the area between this z value and 4")
	chartCompareCmd.Flags().StringVar(&chartProd, "production", "", "production column (required)")
	chartCompareCmd.Flags().StringVar(&chartCons, "consumption", "", "consumption column (required)")
}
