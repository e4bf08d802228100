package cmd

import (
	"fmt"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	corrInput inputFlags
	corrX     string
	corrY     string
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <file>",
	Short: "Correlation table (X, Y, X², Y², XY with sums) and Pearson r",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("x", corrX); err != nil {
			return err
		}
		if err := requireFlag("y", corrY); err != nil {
			return err
		}
		tbl, err := corrInput.load(args[0])
		if err != nil {
			return err
		}
		xs, ys, err := tbl.Pairs(corrX, corrY)
		if err != nil {
			return err
		}
		ct, err := analysis.NewCorrelationTable(xs, ys, "X", "Y")
		if err != nil {
			return err
		}
		md := fmt.Sprintf("X: %s\nY: %s\n\n", corrX, corrY) + ct.Markdown()
		return emit(cmd, report.New("correlate", args[0], ct, md))
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	corrInput.register(correlateCmd)
	correlateCmd.Flags().StringVarP(&corrX, "x", "x", "", "X column (required)")
	correlateCmd.Flags().StringVarP(&corrY, "y", "y", "", "Y column (required)")
}
