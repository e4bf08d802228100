package cmd

import (
	"strings"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	descInput     inputFlags
	descColumns   []string
	descThreshold float64
)

// describeResult is the per-file JSON payload of describe.
type describeResult struct {
	File    string                 `json:"file"`
	Rows    int                    `json:"rows"`
	Columns []analysis.ColumnStats `json:"columns"`
	Flat    map[string]float64     `json:"flat"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Mean, standard deviation and robust outlier counts per numeric column",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		threshold := descThreshold
		if !cmd.Flags().Changed("outlier-threshold") {
			threshold = settings().OutlierThreshold
		}
		var results []describeResult
		var md strings.Builder
		for i, f := range files {
			tbl, err := descInput.load(f)
			if err != nil {
				return err
			}
			cols, err := analysis.Describe(tbl, descColumns, threshold)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"file": tbl.Name, "columns": len(cols)}).Debug("described")
			results = append(results, describeResult{File: tbl.Name, Rows: tbl.Len(), Columns: cols, Flat: analysis.StatsMap(cols)})
			if i > 0 {
				md.WriteString("\n")
			}
			md.WriteString(analysis.DescribeMarkdown(tbl.Name, tbl.Len(), cols))
		}
		var payload any = results
		source := strings.Join(files, ", ")
		if len(results) == 1 {
			payload = results[0]
		}
		return emit(cmd, report.New("describe", source, payload, md.String()))
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	descInput.register(describeCmd)
	describeCmd.Flags().StringSliceVarP(&descColumns, "columns", "c", nil, "columns to describe (default: every numeric column)")
	describeCmd.Flags().Float64Var(&descThreshold, "outlier-threshold", analysis.DefaultOutlierThreshold, "robust |z| threshold for outliers (MAD-based)")
}
