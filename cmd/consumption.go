package cmd

import (
	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

var (
	consInput     inputFlags
	consPop       string
	consPerCapita string
	consLabel     string
	consScale     float64
)

// consumptionResult is the JSON payload of consumption.
type consumptionResult struct {
	Labels      []string  `json:"labels,omitempty"`
	Population  []float64 `json:"population"`
	PerCapita   []float64 `json:"per_capita"`
	Consumption []float64 `json:"consumption"`
	Total       float64   `json:"total"`
	Scale       float64   `json:"scale"`
}

var consumptionCmd = &cobra.Command{
	Use:   "consumption <file>",
	Short: "Consumption per row: population x per-capita / scale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("population", consPop); err != nil {
			return err
		}
		if err := requireFlag("per-capita", consPerCapita); err != nil {
			return err
		}
		tbl, err := consInput.load(args[0])
		if err != nil {
			return err
		}
		pop, pc, err := tbl.Pairs(consPop, consPerCapita)
		if err != nil {
			return err
		}
		var labels []string
		if consLabel != "" {
			labels, err = tbl.Strings(consLabel)
			if err != nil {
				return err
			}
			// Labels only line up when no row was dropped.
			if len(labels) != len(pop) {
				labels = nil
			}
		}
		scale := consScale
		if !cmd.Flags().Changed("scale") {
			scale = settings().ConsumptionScale
		}
		cons, err := analysis.ConsumptionColumn(pop, pc, scale)
		if err != nil {
			return err
		}
		res := consumptionResult{Labels: labels, Population: pop, PerCapita: pc, Consumption: cons, Scale: scale}
		res.Total = floats.Sum(cons)
		md := analysis.ConsumptionMarkdown(labels, pop, pc, cons)
		return emit(cmd, report.New("consumption", args[0], res, md))
	},
}

func init() {
	rootCmd.AddCommand(consumptionCmd)
	consInput.register(consumptionCmd)
	consumptionCmd.Flags().StringVar(&consPop, "population", "", "population column (required)")
	consumptionCmd.Flags().StringVar(&consPerCapita, "per-capita", "", "per-capita consumption column (required)")
	consumptionCmd.Flags().StringVar(&consLabel, "label", "", "row label column (state, region)")
	consumptionCmd.Flags().Float64Var(&consScale, "scale", analysis.DefaultConsumptionScale, "divisor applied to population x per-capita")
}
