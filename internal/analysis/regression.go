package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultForecastHorizon is the number of positions forecast past the data.
const DefaultForecastHorizon = 5

// RegressionRow is one observation with its XY and X² products.
type RegressionRow struct {
	Label string  `json:"label,omitempty"`
	Y     float64 `json:"y"`
	X     float64 `json:"x"`
	XY    float64 `json:"xy"`
	X2    float64 `json:"x2"`
}

// Forecast is a predicted value at a position beyond the observed data.
type Forecast struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Regression is a least-squares fit of Y on X written as
// f(x) = meanY + Beta*(x - meanX).
type Regression struct {
	Rows  []RegressionRow `json:"rows"`
	Sigma RegressionRow   `json:"sigma"`
	Mean  RegressionRow   `json:"mean"`
	N     int             `json:"n"`

	Beta      float64    `json:"beta"`
	Intercept float64    `json:"intercept"`
	RSquared  float64    `json:"r_squared"`
	Forecasts []Forecast `json:"forecasts"`
}

// Regress fits y against x. A nil x means the positions 1..n. Forecasts are
// produced for the horizon positions following the last x, stepping by 1;
// horizon 0 uses DefaultForecastHorizon and a negative horizon disables
// forecasting.
func Regress(y, x []float64, horizon int) (*Regression, error) {
	if len(y) < 2 {
		return nil, fmt.Errorf("regression: %w", ErrInsufficientData)
	}
	if x == nil {
		x = make([]float64, len(y))
		floats.Span(x, 1, float64(len(y)))
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("regression: %d x vs %d y values: %w", len(x), len(y), ErrLengthMismatch)
	}
	if horizon == 0 {
		horizon = DefaultForecastHorizon
	}

	r := &Regression{N: len(y), Sigma: RegressionRow{Label: SigmaLabel}, Mean: RegressionRow{Label: MeanLabel}}
	for i := range y {
		row := RegressionRow{Y: y[i], X: x[i], XY: x[i] * y[i], X2: x[i] * x[i]}
		r.Rows = append(r.Rows, row)
		r.Sigma.Y += row.Y
		r.Sigma.X += row.X
		r.Sigma.XY += row.XY
		r.Sigma.X2 += row.X2
	}
	n := float64(r.N)
	r.Mean.Y = r.Sigma.Y / n
	r.Mean.X = r.Sigma.X / n
	r.Mean.XY = r.Sigma.XY / n
	r.Mean.X2 = r.Sigma.X2 / n

	den := r.Sigma.X2 - r.Sigma.X*r.Sigma.X/n
	if den == 0 {
		return nil, fmt.Errorf("regression: x does not vary: %w", ErrZeroVariance)
	}
	r.Beta = (r.Sigma.XY - r.Sigma.X*r.Sigma.Y/n) / den
	r.Intercept = r.Mean.Y - r.Beta*r.Mean.X
	r.RSquared = stat.RSquaredFrom(r.fitted(x), y, nil)

	last := floats.Max(x)
	for i := 1; i <= horizon; i++ {
		fx := last + float64(i)
		r.Forecasts = append(r.Forecasts, Forecast{X: fx, Y: r.Predict(fx)})
	}
	return r, nil
}

// Predict evaluates the regression function at x.
func (r *Regression) Predict(x float64) float64 {
	return r.Mean.Y + r.Beta*(x-r.Mean.X)
}

// XS returns the observed x values in input order.
func (r *Regression) XS() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.X
	}
	return out
}

// YS returns the observed y values in input order.
func (r *Regression) YS() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Y
	}
	return out
}

func (r *Regression) fitted(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = r.Predict(v)
	}
	return out
}
