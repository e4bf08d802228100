package analysis

import "errors"

var (
	// ErrInsufficientData indicates a sample too small for the statistic.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrLengthMismatch indicates paired inputs of different lengths.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrZeroVariance indicates a denominator that vanished because the data do not vary.
	ErrZeroVariance = errors.New("zero variance")
	// ErrNotSquare indicates a matrix operation that needs a square matrix.
	ErrNotSquare = errors.New("matrix is not square")
	// ErrZeroVector indicates the power iteration produced an all-zero vector.
	ErrZeroVector = errors.New("iteration produced a zero vector")
	// ErrInvalidArgument indicates a parameter outside its domain.
	ErrInvalidArgument = errors.New("invalid argument")
)
