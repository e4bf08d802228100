package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testFlags are shared by ztest and ttest.
type testFlags struct {
	input    inputFlags
	colA     string
	colB     string
	alpha    float64
	critical float64
}

func (tf *testFlags) register(c *cobra.Command) {
	tf.input.register(c)
	c.Flags().StringVar(&tf.colA, "a", "", "first sample column (required)")
	c.Flags().StringVar(&tf.colB, "b", "", "second sample column (required)")
	c.Flags().Float64Var(&tf.alpha, "alpha", analysis.DefaultAlpha, "significance level for the critical value")
	c.Flags().Float64Var(&tf.critical, "critical", 0, "critical value (overrides --alpha)")
}

func (tf *testFlags) samples(path string) ([]float64, []float64, error) {
	if err := requireFlag("a", tf.colA); err != nil {
		return nil, nil, err
	}
	if err := requireFlag("b", tf.colB); err != nil {
		return nil, nil, err
	}
	tbl, err := tf.input.load(path)
	if err != nil {
		return nil, nil, err
	}
	a, err := tbl.Floats(tf.colA)
	if err != nil {
		return nil, nil, err
	}
	b, err := tbl.Floats(tf.colB)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// verdict resolves the critical value: --critical, then config critical_value,
// then the distribution quantile at alpha.
func (tf *testFlags) verdict(cmd *cobra.Command, statistic float64, quantile func(alpha float64) (float64, error)) (*analysis.Verdict, error) {
	alpha := tf.alpha
	if !cmd.Flags().Changed("alpha") {
		alpha = settings().Alpha
	}
	if cmd.Flags().Changed("critical") {
		return analysis.NewVerdict(statistic, tf.critical, 0), nil
	}
	if cv := settings().CriticalValue; cv != 0 {
		return analysis.NewVerdict(statistic, cv, 0), nil
	}
	crit, err := quantile(alpha)
	if err != nil {
		return nil, err
	}
	return analysis.NewVerdict(statistic, crit, alpha), nil
}

type testResult struct {
	Test    any               `json:"test"`
	Verdict *analysis.Verdict `json:"verdict"`
}

var (
	zFlags testFlags
	zN1    int
	zN2    int
	tFlags testFlags
)

var ztestCmd = &cobra.Command{
	Use:   "ztest <file>",
	Short: "Two-sample Z-test between two columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, b, err := zFlags.samples(args[0])
		if err != nil {
			return err
		}
		res, err := analysis.ZTest(a, b, zN1, zN2)
		if err != nil {
			return err
		}
		v, err := zFlags.verdict(cmd, res.Z, analysis.CriticalZ)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"z": res.Z, "critical": v.Critical}).Debug("z-test")
		return emit(cmd, report.New("ztest", args[0], testResult{Test: res, Verdict: v}, res.Markdown(v)))
	},
}

var ttestCmd = &cobra.Command{
	Use:   "ttest <file>",
	Short: "Pooled two-sample t-test between two columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, b, err := tFlags.samples(args[0])
		if err != nil {
			return err
		}
		res, err := analysis.TTest(a, b)
		if err != nil {
			return err
		}
		v, err := tFlags.verdict(cmd, res.T, func(alpha float64) (float64, error) {
			return analysis.CriticalT(alpha, res.DF)
		})
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"t": res.T, "df": res.DF, "critical": v.Critical}).Debug("t-test")
		return emit(cmd, report.New("ttest", args[0], testResult{Test: res, Verdict: v}, res.Markdown(v)))
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <statistic> <critical>",
	Short: "Compare a test statistic with a critical value",
	Long: `Compares a test statistic with a critical value: a statistic strictly
greater than the critical value rejects the null hypothesis. Negative values
are read as numbers, not flags.`,
	Example: `  statloom compare 2.5 1.645
  statloom compare -2.5 1.645 --format json`,
	// Flags are parsed in RunE so that "-2.5" stays a positional value.
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, help, err := parseNumericArgs(cmd, args)
		if err != nil {
			return err
		}
		if help {
			return cmd.Help()
		}
		if len(pos) != 2 {
			return fmt.Errorf("compare takes <statistic> <critical>, got %d value(s)", len(pos))
		}
		stat, err := strconv.ParseFloat(pos[0], 64)
		if err != nil {
			return fmt.Errorf("invalid statistic: %w", err)
		}
		crit, err := strconv.ParseFloat(pos[1], 64)
		if err != nil {
			return fmt.Errorf("invalid critical value: %w", err)
		}
		v := analysis.NewVerdict(stat, crit, 0)
		md := fmt.Sprintf("[DECISION]\ncritical value: %.4f\nstatistic: %.4f\nresult: %s\n", v.Critical, v.Statistic, v.Decision)
		return emit(cmd, report.New("compare", "", v, md))
	},
}

// parseNumericArgs parses the command's own and inherited flags from args,
// treating negative numbers as positional values.
func parseNumericArgs(cmd *cobra.Command, args []string) (pos []string, help bool, err error) {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.AddFlagSet(cmd.Flags())
	fs.AddFlagSet(cmd.InheritedFlags())
	in := make([]string, len(args))
	for i, a := range args {
		in[i] = a
		if strings.HasPrefix(a, "-") {
			if _, err := strconv.ParseFloat(a, 64); err == nil {
				// pflag only treats tokens starting with '-' as flags.
				in[i] = " " + a
			}
		}
	}
	if err := fs.Parse(in); err != nil {
		return nil, false, err
	}
	if h, err := fs.GetBool("help"); err == nil && h {
		return nil, true, nil
	}
	for _, a := range fs.Args() {
		pos = append(pos, strings.TrimSpace(a))
	}
	return pos, false, nil
}

func init() {
	rootCmd.AddCommand(ztestCmd, ttestCmd, compareCmd)
	zFlags.register(ztestCmd)
	ztestCmd.Flags().IntVar(&zN1, "n1", 0, "size of sample 1 (default: its length)")
	ztestCmd.Flags().IntVar(&zN2, "n2", 0, "size of sample 2 (default: its length)")
	tFlags.register(ttestCmd)
}
