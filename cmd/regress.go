package cmd

import (
	"fmt"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/dataset"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	regInput   inputFlags
	regX       string
	regY       string
	regHorizon int
	regChart   string
)

var regressCmd = &cobra.Command{
	Use:   "regress <file>",
	Short: "Least-squares regression table with forecasts",
	Long: `Fits Y on X (or on the positions 1..n when --x is omitted), prints the
Y, X, XY, X² table with its Sigma and Mean rows, and forecasts the next
--horizon positions. --chart also draws the regression plot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("y", regY); err != nil {
			return err
		}
		tbl, err := regInput.load(args[0])
		if err != nil {
			return err
		}
		horizon := regHorizon
		if !cmd.Flags().Changed("horizon") {
			horizon = settings().ForecastHorizon
		}
		reg, err := fitRegression(tbl, regX, regY, horizon)
		if err != nil {
			return err
		}
		env := report.New("regress", args[0], reg, reg.Markdown())
		if regChart != "" {
			path, err := saveRegressionChart(reg, regChart, regX)
			if err != nil {
				return err
			}
			env.Files = append(env.Files, path)
		}
		return emit(cmd, env)
	},
}

// fitRegression reads the columns and fits. Without xcol, x is the 1-based
// row position of each value. A horizon of 0 disables forecasts.
func fitRegression(tbl *dataset.Table, xcol, ycol string, horizon int) (*analysis.Regression, error) {
	var xs, ys []float64
	var err error
	if xcol != "" {
		xs, ys, err = tbl.Pairs(xcol, ycol)
	} else {
		ys, xs, err = tbl.FloatsIndexed(ycol)
	}
	if err != nil {
		return nil, err
	}
	if horizon == 0 {
		horizon = -1
	}
	reg, err := analysis.Regress(ys, xs, horizon)
	if err != nil {
		return nil, fmt.Errorf("regress %q: %w", ycol, err)
	}
	logrus.WithFields(logrus.Fields{"n": reg.N, "beta": reg.Beta, "forecasts": len(reg.Forecasts)}).Debug("regression fitted")
	return reg, nil
}

func init() {
	rootCmd.AddCommand(regressCmd)
	regInput.register(regressCmd)
	regressCmd.Flags().StringVarP(&regY, "y", "y", "", "Y (value) column (required)")
	regressCmd.Flags().StringVarP(&regX, "x", "x", "", "X column (default: positions 1..n)")
	regressCmd.Flags().IntVar(&regHorizon, "horizon", analysis.DefaultForecastHorizon, "number of positions to forecast (0 = none)")
	regressCmd.Flags().StringVar(&regChart, "chart", "", "also save the regression chart to this image file")
}
