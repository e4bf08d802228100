package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"github.com/KaramelBytes/statloom-cli/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	eigenInput    inputFlags
	eigenMatrix   string
	eigenColumns  []string
	eigenMaxIter  int
	eigenDecimals int
)

var eigenCmd = &cobra.Command{
	Use:   "eigen [file]",
	Short: "Dominant eigenvalue and eigenvector by the power method",
	Long: `Runs the power method on a square matrix given inline with --matrix
(rows separated by ';', values by ',') or read from the numeric columns of a table.`,
	Example: `  statloom eigen --matrix "2,1,0;1,2,1;0,1,2"
  statloom eigen matrix.csv --columns a,b,c`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows [][]float64
		var err error
		source := "inline"
		switch {
		case eigenMatrix != "" && len(args) == 1:
			return fmt.Errorf("use either --matrix or a file, not both")
		case eigenMatrix != "":
			rows, err = parseMatrix(eigenMatrix)
		case len(args) == 1:
			source = args[0]
			rows, err = matrixFromTable(args[0])
		default:
			return fmt.Errorf("provide a matrix file or --matrix")
		}
		if err != nil {
			return err
		}
		m, err := analysis.NewMatrix(rows)
		if err != nil {
			return err
		}
		opts := analysis.PowerOptions{Decimals: eigenDecimals, MaxIterations: eigenMaxIter}
		if !cmd.Flags().Changed("decimals") {
			opts.Decimals = settings().PowerDecimals
		} else if opts.Decimals <= 0 {
			return fmt.Errorf("--decimals must be positive, got %d", opts.Decimals)
		}
		if !cmd.Flags().Changed("max-iterations") {
			opts.MaxIterations = settings().PowerMaxIterations
		} else if opts.MaxIterations <= 0 {
			return fmt.Errorf("--max-iterations must be positive, got %d", opts.MaxIterations)
		}
		res, err := analysis.PowerMethod(m, opts)
		if err != nil {
			return err
		}
		if !res.Converged {
			logrus.WithField("iterations", res.Iterations).Warn("power method hit the iteration limit")
		}
		return emit(cmd, report.New("eigen", source, res, res.Markdown()))
	},
}

// parseMatrix reads "a,b;c,d" into rows.
func parseMatrix(s string) ([][]float64, error) {
	var rows [][]float64
	for i, line := range strings.Split(s, ";") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var row []float64
		for _, f := range strings.Split(line, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("matrix row %d: invalid number %q", i+1, f)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// matrixFromTable uses every data row of the selected columns as a matrix row.
func matrixFromTable(path string) ([][]float64, error) {
	tbl, err := eigenInput.load(path)
	if err != nil {
		return nil, err
	}
	cols := eigenColumns
	if len(cols) == 0 {
		cols = tbl.Columns()
	}
	colVals := make([][]float64, len(cols))
	for j, c := range cols {
		vals, err := tbl.Floats(c)
		if err != nil {
			return nil, err
		}
		if len(vals) != tbl.Len() {
			return nil, fmt.Errorf("matrix column %q has missing cells", c)
		}
		colVals[j] = vals
	}
	rows := make([][]float64, tbl.Len())
	for i := range rows {
		rows[i] = make([]float64, len(cols))
		for j := range cols {
			rows[i][j] = colVals[j][i]
		}
	}
	return rows, nil
}

func init() {
	rootCmd.AddCommand(eigenCmd)
	eigenInput.register(eigenCmd)
	eigenCmd.Flags().StringVar(&eigenMatrix, "matrix", "", "inline matrix, e.g. \"2,1;1,2\"")
	eigenCmd.Flags().StringSliceVarP(&eigenColumns, "columns", "c", nil, "matrix columns when reading a file (default: every column)")
	eigenCmd.Flags().IntVar(&eigenMaxIter, "max-iterations", 100, "iteration limit")
	eigenCmd.Flags().IntVar(&eigenDecimals, "decimals", 4, "rounding used for the vector and the convergence check")
}
