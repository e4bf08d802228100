package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the significance level used when none is given.
const DefaultAlpha = 0.05

// Decision is the outcome of comparing a statistic with a critical value.
type Decision string

const (
	RejectNull Decision = "Reject Null Hypothesis"
	AcceptNull Decision = "Null Hypothesis Accepted"
)

// Compare rejects the null hypothesis only when statistic is strictly
// greater than critical.
func Compare(statistic, critical float64) Decision {
	if statistic > critical {
		return RejectNull
	}
	return AcceptNull
}

// ZTestResult holds a two-sample Z statistic and its inputs.
type ZTestResult struct {
	Mean1 float64 `json:"mean1"`
	Mean2 float64 `json:"mean2"`
	Std1  float64 `json:"std1"`
	Std2  float64 `json:"std2"`
	N1    int     `json:"n1"`
	N2    int     `json:"n2"`
	Z     float64 `json:"z"`
	// POneTailed is P(Z > z); PTwoTailed is P(|Z| > |z|).
	POneTailed float64 `json:"p_one_tailed"`
	PTwoTailed float64 `json:"p_two_tailed"`
}

// ZTest computes z = (m1-m2)/sqrt(s1²/n1 + s2²/n2) with sample standard
// deviations. n1 or n2 of 0 means the length of the respective sample.
func ZTest(a, b []float64, n1, n2 int) (*ZTestResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, fmt.Errorf("z-test needs at least 2 values per sample: %w", ErrInsufficientData)
	}
	if n1 < 0 || n2 < 0 {
		return nil, fmt.Errorf("z-test sample sizes must be positive: %w", ErrInvalidArgument)
	}
	if n1 == 0 {
		n1 = len(a)
	}
	if n2 == 0 {
		n2 = len(b)
	}
	r := &ZTestResult{N1: n1, N2: n2}
	r.Mean1, r.Std1 = stat.MeanStdDev(a, nil)
	r.Mean2, r.Std2 = stat.MeanStdDev(b, nil)
	se := math.Sqrt(r.Std1*r.Std1/float64(n1) + r.Std2*r.Std2/float64(n2))
	if se == 0 {
		return nil, fmt.Errorf("z-test: %w", ErrZeroVariance)
	}
	r.Z = (r.Mean1 - r.Mean2) / se
	r.POneTailed = distuv.UnitNormal.Survival(r.Z)
	r.PTwoTailed = 2 * distuv.UnitNormal.Survival(math.Abs(r.Z))
	return r, nil
}

// TTestResult holds a pooled two-sample t statistic.
type TTestResult struct {
	Mean1 float64 `json:"mean1"`
	Mean2 float64 `json:"mean2"`
	Std1  float64 `json:"std1"` // population standard deviation
	Std2  float64 `json:"std2"`
	N1    int     `json:"n1"`
	N2    int     `json:"n2"`
	// Sp is sqrt((s1²+s2²)/2).
	Sp         float64 `json:"sp"`
	T          float64 `json:"t"`
	DF         float64 `json:"df"`
	POneTailed float64 `json:"p_one_tailed"`
	PTwoTailed float64 `json:"p_two_tailed"`
}

// TTest computes t = (m1-m2)/(Sp*sqrt(1/n1+1/n2)) using population
// standard deviations and Sp = sqrt((s1²+s2²)/2).
func TTest(a, b []float64) (*TTestResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, fmt.Errorf("t-test needs at least 2 values per sample: %w", ErrInsufficientData)
	}
	r := &TTestResult{N1: len(a), N2: len(b)}
	r.Mean1, r.Std1 = stat.PopMeanStdDev(a, nil)
	r.Mean2, r.Std2 = stat.PopMeanStdDev(b, nil)
	r.Sp = math.Sqrt((r.Std1*r.Std1 + r.Std2*r.Std2) / 2)
	se := r.Sp * math.Sqrt(1/float64(r.N1)+1/float64(r.N2))
	if se == 0 {
		return nil, fmt.Errorf("t-test: %w", ErrZeroVariance)
	}
	r.T = (r.Mean1 - r.Mean2) / se
	r.DF = float64(r.N1 + r.N2 - 2)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: r.DF}
	r.POneTailed = dist.Survival(r.T)
	r.PTwoTailed = 2 * dist.Survival(math.Abs(r.T))
	return r, nil
}

// CriticalZ returns the upper one-tailed critical value of the standard
// normal for significance alpha (1.645 for 0.05).
func CriticalZ(alpha float64) (float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("alpha %v: %w", alpha, ErrInvalidArgument)
	}
	return distuv.UnitNormal.Quantile(1 - alpha), nil
}

// CriticalT returns the upper one-tailed critical value of Student's t.
func CriticalT(alpha, df float64) (float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("alpha %v: %w", alpha, ErrInvalidArgument)
	}
	if df <= 0 {
		return 0, fmt.Errorf("degrees of freedom %v: %w", df, ErrInvalidArgument)
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha), nil
}
