package cmd

import (
	"fmt"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	anovaInput   inputFlags
	anovaColumns []string
	anovaAlpha   float64
)

var anovaCmd = &cobra.Command{
	Use:   "anova <file>",
	Short: "One-way ANOVA with each selected column as a group",
	Long: `One-way analysis of variance where every selected column is a group.
Groups may differ in size; missing cells are skipped.

The between-groups sum of squares is computed from column totals,
SSB = Σ(T_j²/n_j) - T²/N. Worksheets that instead sum squared row totals
divided by the number of columns (a two-way "rows" term) produce a
different SSB and F for the same table.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := anovaInput.load(args[0])
		if err != nil {
			return err
		}
		cols := anovaColumns
		if len(cols) == 0 {
			cols = tbl.Columns()
		}
		if len(cols) < 2 {
			return fmt.Errorf("anova needs at least 2 columns, got %d", len(cols))
		}
		groups := make([]analysis.Group, 0, len(cols))
		for _, c := range cols {
			vals, err := tbl.Floats(c)
			if err != nil {
				return err
			}
			groups = append(groups, analysis.Group{Name: c, Values: vals})
		}
		res, err := analysis.ANOVA(groups)
		if err != nil {
			return err
		}
		alpha := anovaAlpha
		if !cmd.Flags().Changed("alpha") {
			alpha = settings().Alpha
		}
		crit, err := res.CriticalF(alpha)
		if err != nil {
			return err
		}
		v := analysis.NewVerdict(res.F, crit, alpha)
		logrus.WithFields(logrus.Fields{"groups": len(groups), "f": res.F, "critical": crit}).Debug("anova")
		return emit(cmd, report.New("anova", args[0], testResult{Test: res, Verdict: v}, res.Markdown(v)))
	},
}

func init() {
	rootCmd.AddCommand(anovaCmd)
	anovaInput.register(anovaCmd)
	anovaCmd.Flags().StringSliceVarP(&anovaColumns, "columns", "c", nil, "group columns (default: every column)")
	anovaCmd.Flags().Float64Var(&anovaAlpha, "alpha", analysis.DefaultAlpha, "significance level for the critical F")
}
