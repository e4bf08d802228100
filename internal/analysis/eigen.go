package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// PowerOptions tunes the power iteration.
type PowerOptions struct {
	// Decimals is the rounding applied to the normalized vector and used to
	// compare successive eigenvalue estimates. 0 means 4; negative is invalid.
	Decimals int
	// MaxIterations bounds the loop. 0 means 100; negative is invalid.
	MaxIterations int
}

// EigenResult is the dominant eigenpair found by PowerMethod.
type EigenResult struct {
	Eigenvalue  float64   `json:"eigenvalue"`
	Eigenvector []float64 `json:"eigenvector"`
	// Iterations is the index of the step at which the estimate settled, or
	// MaxIterations when it never did.
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
	// Lambdas and Vectors start with the initial state (0 and the ones vector).
	Lambdas []float64   `json:"lambdas"`
	Vectors [][]float64 `json:"vectors"`
}

// PowerMethod approximates the dominant eigenvalue of a by repeated
// multiplication, starting from the ones vector and normalizing by the
// largest absolute component. It stops once the eigenvalue estimate,
// rounded to opts.Decimals, repeats.
func PowerMethod(a mat.Matrix, opts PowerOptions) (*EigenResult, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("power method on %dx%d: %w", r, c, ErrNotSquare)
	}
	if opts.Decimals < 0 || opts.MaxIterations < 0 {
		return nil, fmt.Errorf("power method with %d decimals, %d iterations: %w", opts.Decimals, opts.MaxIterations, ErrInvalidArgument)
	}
	if opts.Decimals == 0 {
		opts.Decimals = 4
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = 100
	}

	x := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		x.SetVec(i, 1)
	}
	res := &EigenResult{
		Lambdas: []float64{0},
		Vectors: [][]float64{mat.Col(nil, 0, x)},
	}
	var y mat.VecDense
	for i := 0; i < opts.MaxIterations; i++ {
		y.MulVec(a, x)
		ys := mat.Col(nil, 0, &y)
		lambda := maxAbs(ys)
		if lambda == 0 {
			return nil, fmt.Errorf("power method step %d: %w", i, ErrZeroVector)
		}
		for j := range ys {
			ys[j] = scalar.Round(ys[j]/lambda, opts.Decimals)
		}
		x = mat.NewVecDense(r, ys)
		res.Lambdas = append(res.Lambdas, lambda)
		res.Vectors = append(res.Vectors, append([]float64(nil), ys...))
		res.Iterations = i
		if i > 0 && scalar.Round(res.Lambdas[i+1], opts.Decimals) == scalar.Round(res.Lambdas[i], opts.Decimals) {
			res.Converged = true
			break
		}
	}
	if !res.Converged {
		res.Iterations = opts.MaxIterations
	}
	res.Eigenvalue = res.Lambdas[len(res.Lambdas)-1]
	res.Eigenvector = res.Vectors[len(res.Vectors)-1]
	return res, nil
}

// NewMatrix builds a dense matrix from rows of equal length.
func NewMatrix(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("matrix: %w", ErrInsufficientData)
	}
	n := len(rows[0])
	data := make([]float64, 0, len(rows)*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d values, want %d: %w", i+1, len(row), n, ErrLengthMismatch)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), n, data), nil
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
