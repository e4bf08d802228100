package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/statloom-cli/internal/dataset"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultOutlierThreshold is the robust |z| above which a value counts as an outlier.
const DefaultOutlierThreshold = 3.5

// ColumnStats summarizes one numeric column.
type ColumnStats struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit,omitempty"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`     // sample standard deviation (n-1)
	PopStd float64 `json:"pop_std"` // population standard deviation (n)
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`

	OutlierThreshold float64 `json:"outlier_threshold"`
	Outliers         int     `json:"outliers"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
}

// Describe computes ColumnStats for the named columns, or for every column
// that parses as numeric when columns is empty. threshold <= 0 uses
// DefaultOutlierThreshold.
func Describe(t *dataset.Table, columns []string, threshold float64) ([]ColumnStats, error) {
	explicit := len(columns) > 0
	if !explicit {
		columns = t.Columns()
	}
	var out []ColumnStats
	for _, col := range columns {
		vals, err := t.Floats(col)
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("describe: %w", err)
			}
			continue
		}
		cs, err := DescribeValues(col, vals, threshold)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w", col, err)
		}
		if idx, err := t.Lookup(col); err == nil {
			cs.Name = t.Header[idx]
			cs.Unit = t.Units[idx]
		}
		out = append(out, cs)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("describe: no numeric columns: %w", ErrInsufficientData)
	}
	return out, nil
}

// DescribeValues summarizes a single sample. The sample standard deviation
// of a one-element sample is reported as 0.
func DescribeValues(name string, vals []float64, threshold float64) (ColumnStats, error) {
	if len(vals) == 0 {
		return ColumnStats{}, ErrInsufficientData
	}
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	cs := ColumnStats{
		Name:             name,
		Count:            len(vals),
		Min:              floats.Min(vals),
		Max:              floats.Max(vals),
		OutlierThreshold: threshold,
	}
	cs.Mean, cs.PopStd = stat.PopMeanStdDev(vals, nil)
	if len(vals) > 1 {
		cs.Std = stat.StdDev(vals, nil)
	}
	med, err := stats.Median(vals)
	if err != nil {
		return ColumnStats{}, err
	}
	cs.Median = med
	cs.Outliers, cs.OutliersMaxAbsZ = robustOutliers(vals, med, threshold)
	return cs, nil
}

// StatsMap flattens ColumnStats into mean_<col> / std_<col> keys.
func StatsMap(cols []ColumnStats) map[string]float64 {
	out := make(map[string]float64, 2*len(cols))
	for _, c := range cols {
		out["mean_"+c.Name] = c.Mean
		out["std_"+c.Name] = c.Std
	}
	return out
}

// robustOutliers counts values whose modified z-score 0.6745*(x-median)/MAD
// exceeds the threshold.
func robustOutliers(vals []float64, median, threshold float64) (count int, maxAbs float64) {
	mad, err := stats.MedianAbsoluteDeviationPopulation(vals)
	if err != nil || mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > threshold {
			count++
			maxAbs = math.Max(maxAbs, az)
		}
	}
	return count, maxAbs
}
