package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// SigmaLabel marks the column-sum row of the computation tables.
const SigmaLabel = "Sigma"

// MeanLabel marks the column-mean row of the regression table.
const MeanLabel = "Mean"

// CorrelationRow is one pair of observations with its derived products.
type CorrelationRow struct {
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	XY    float64 `json:"xy"`
}

// CorrelationTable lists X, Y, X², Y² and XY per pair plus their sums.
type CorrelationTable struct {
	XLabel string           `json:"x_label"`
	YLabel string           `json:"y_label"`
	Rows   []CorrelationRow `json:"rows"`
	Sigma  CorrelationRow   `json:"sigma"`
	N      int              `json:"n"`
	// R is Pearson's r computed from the sums.
	R float64 `json:"r"`
}

// NewCorrelationTable builds the computation table for paired samples.
func NewCorrelationTable(x, y []float64, xLabel, yLabel string) (*CorrelationTable, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("correlation table: %d vs %d values: %w", len(x), len(y), ErrLengthMismatch)
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("correlation table: %w", ErrInsufficientData)
	}
	if xLabel == "" {
		xLabel = "X"
	}
	if yLabel == "" {
		yLabel = "Y"
	}
	ct := &CorrelationTable{XLabel: xLabel, YLabel: yLabel, N: len(x), Sigma: CorrelationRow{Label: SigmaLabel}}
	for i := range x {
		r := CorrelationRow{X: x[i], Y: y[i], X2: x[i] * x[i], Y2: y[i] * y[i], XY: x[i] * y[i]}
		ct.Rows = append(ct.Rows, r)
		ct.Sigma.X += r.X
		ct.Sigma.Y += r.Y
		ct.Sigma.X2 += r.X2
		ct.Sigma.Y2 += r.Y2
		ct.Sigma.XY += r.XY
	}
	n := float64(ct.N)
	s := ct.Sigma
	den := math.Sqrt((n*s.X2 - s.X*s.X) * (n*s.Y2 - s.Y*s.Y))
	if den == 0 || math.IsNaN(den) {
		return nil, fmt.Errorf("correlation table: %w", ErrZeroVariance)
	}
	ct.R = (n*s.XY - s.X*s.Y) / den
	return ct, nil
}

// Headers returns the column titles, e.g. X, Y, X^2, Y^2, XY.
func (ct *CorrelationTable) Headers() []string {
	return []string{ct.XLabel, ct.YLabel, ct.XLabel + "^2", ct.YLabel + "^2", ct.XLabel + ct.YLabel}
}

// Pearson returns the product-moment correlation coefficient of x and y.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("pearson: %w", ErrLengthMismatch)
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("pearson: %w", ErrInsufficientData)
	}
	// stats.Pearson reports 0 for a constant sample; treat it as undefined.
	if floats.Min(x) == floats.Max(x) || floats.Min(y) == floats.Max(y) {
		return 0, fmt.Errorf("pearson: %w", ErrZeroVariance)
	}
	r, err := stats.Pearson(x, y)
	if err != nil {
		return 0, fmt.Errorf("pearson: %w", err)
	}
	return r, nil
}
