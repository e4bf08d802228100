package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// Verdict records a statistic checked against a critical value.
type Verdict struct {
	Alpha     float64  `json:"alpha,omitempty"`
	Critical  float64  `json:"critical"`
	Statistic float64  `json:"statistic"`
	Decision  Decision `json:"decision"`
}

// NewVerdict compares statistic with critical.
func NewVerdict(statistic, critical, alpha float64) *Verdict {
	return &Verdict{Alpha: alpha, Critical: critical, Statistic: statistic, Decision: Compare(statistic, critical)}
}

func (v *Verdict) write(b *strings.Builder) {
	if v == nil {
		return
	}
	b.WriteString("\n[DECISION]\n")
	if v.Alpha > 0 {
		fmt.Fprintf(b, "alpha: %.4g\n", v.Alpha)
	}
	fmt.Fprintf(b, "critical value: %.4f\n", v.Critical)
	fmt.Fprintf(b, "statistic: %.4f\n", v.Statistic)
	fmt.Fprintf(b, "result: %s\n", v.Decision)
}

// DescribeMarkdown renders column statistics for a named dataset.
func DescribeMarkdown(name string, rows int, cols []ColumnStats) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		fmt.Fprintf(&b, "File: %s\n", name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", rows)
	fmt.Fprintf(&b, "Numeric columns: %d\n\n", len(cols))

	b.WriteString("[STATISTICS]\n")
	for _, c := range cols {
		name := c.Name
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		fmt.Fprintf(&b, "- %s (n=%d): mean %.4g, std %.4g, median %.4g, min %.4g, max %.4g",
			name, c.Count, c.Mean, c.Std, c.Median, c.Min, c.Max)
		if c.Outliers > 0 {
			fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.Outliers, c.OutlierThreshold, c.OutliersMaxAbsZ)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the Z-test result and an optional verdict.
func (r *ZTestResult) Markdown(v *Verdict) string {
	var b strings.Builder
	b.WriteString("[Z-TEST]\n")
	fmt.Fprintf(&b, "sample 1: mean %.4f, std %.4f, n %d\n", r.Mean1, r.Std1, r.N1)
	fmt.Fprintf(&b, "sample 2: mean %.4f, std %.4f, n %d\n", r.Mean2, r.Std2, r.N2)
	fmt.Fprintf(&b, "z: %.4f\n", r.Z)
	fmt.Fprintf(&b, "p (one-tailed): %.4g\n", r.POneTailed)
	fmt.Fprintf(&b, "p (two-tailed): %.4g\n", r.PTwoTailed)
	v.write(&b)
	return b.String()
}

// Markdown renders the t-test result and an optional verdict.
func (r *TTestResult) Markdown(v *Verdict) string {
	var b strings.Builder
	b.WriteString("[T-TEST]\n")
	fmt.Fprintf(&b, "sample 1: mean %.4f, std %.4f, n %d\n", r.Mean1, r.Std1, r.N1)
	fmt.Fprintf(&b, "sample 2: mean %.4f, std %.4f, n %d\n", r.Mean2, r.Std2, r.N2)
	fmt.Fprintf(&b, "pooled sd: %.4f\n", r.Sp)
	fmt.Fprintf(&b, "t: %.4f (df %.0f)\n", r.T, r.DF)
	fmt.Fprintf(&b, "p (one-tailed): %.4g\n", r.POneTailed)
	fmt.Fprintf(&b, "p (two-tailed): %.4g\n", r.PTwoTailed)
	v.write(&b)
	return b.String()
}

// Markdown renders the computation table as a markdown table.
func (ct *CorrelationTable) Markdown() string {
	var b strings.Builder
	b.WriteString("[CORRELATION TABLE]\n")
	writeTable(&b, append([]string{""}, ct.Headers()...), func(emit func(...string)) {
		for i, r := range ct.Rows {
			emit(corrCells(fmt.Sprint(i+1), r)...)
		}
		emit(corrCells(ct.Sigma.Label, ct.Sigma)...)
	})
	fmt.Fprintf(&b, "\nn: %d\nr: %.4f\n", ct.N, ct.R)
	return b.String()
}

func corrCells(label string, r CorrelationRow) []string {
	return []string{label, exact(r.X), exact(r.Y), exact(r.X2), exact(r.Y2), exact(r.XY)}
}

// Markdown renders the regression table, coefficients and forecasts.
func (r *Regression) Markdown() string {
	var b strings.Builder
	b.WriteString("[REGRESSION TABLE]\n")
	writeTable(&b, []string{"", "Y", "X", "XY", "X^2"}, func(emit func(...string)) {
		for i, row := range r.Rows {
			emit(regCells(fmt.Sprint(i+1), row)...)
		}
		emit(regCells(r.Sigma.Label, r.Sigma)...)
		emit(regCells(r.Mean.Label, r.Mean)...)
	})
	b.WriteString("\n[MODEL]\n")
	fmt.Fprintf(&b, "beta: %.4f\n", r.Beta)
	fmt.Fprintf(&b, "intercept: %.4f\n", r.Intercept)
	fmt.Fprintf(&b, "f(x) = %.4f + %.4f * (x - %.4f)\n", r.Mean.Y, r.Beta, r.Mean.X)
	fmt.Fprintf(&b, "R^2: %.4f\n", r.RSquared)
	if len(r.Forecasts) > 0 {
		b.WriteString("\n[FORECASTS]\n")
		for _, f := range r.Forecasts {
			fmt.Fprintf(&b, "- x=%s: %.4f\n", exact(f.X), f.Y)
		}
	}
	return b.String()
}

func regCells(label string, r RegressionRow) []string {
	return []string{label, exact(r.Y), exact(r.X), exact(r.XY), exact(r.X2)}
}

// Markdown renders the ANOVA table in the usual source/SS/df/MS/F layout.
func (r *ANOVAResult) Markdown(v *Verdict) string {
	var b strings.Builder
	b.WriteString("[GROUPS]\n")
	for _, g := range r.Groups {
		fmt.Fprintf(&b, "- %s (n=%d): total %.4g, mean %.4g\n", g.Name, g.N, g.Total, g.Mean)
	}
	fmt.Fprintf(&b, "\nT: %.4g\nN: %d\nCF: %.4f\n", r.T, r.N, r.CF)
	b.WriteString("\n[ANOVA]\n")
	writeTable(&b, []string{"Source", "SS", "df", "MS", "F"}, func(emit func(...string)) {
		emit("Between", num(r.SSB), fmt.Sprint(r.DFBetween), num(r.MSB), num(r.F))
		emit("Within", num(r.SSW), fmt.Sprint(r.DFWithin), num(r.MSW), "")
		emit("Total", num(r.SST), fmt.Sprint(r.DFTotal), "", "")
	})
	fmt.Fprintf(&b, "\np: %.4g\n", r.P)
	v.write(&b)
	return b.String()
}

// Markdown renders the eigenpair and the iteration history.
func (e *EigenResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[EIGEN]\n")
	fmt.Fprintf(&b, "eigenvalue: %.4f\n", e.Eigenvalue)
	fmt.Fprintf(&b, "eigenvector: %s\n", vec(e.Eigenvector))
	fmt.Fprintf(&b, "iterations: %d\n", e.Iterations)
	if !e.Converged {
		b.WriteString("note: stopped at the iteration limit before the estimate settled\n")
	}
	b.WriteString("\n[ITERATIONS]\n")
	writeTable(&b, []string{"step", "lambda", "x"}, func(emit func(...string)) {
		for i := range e.Lambdas {
			emit(fmt.Sprint(i), num(e.Lambdas[i]), vec(e.Vectors[i]))
		}
	})
	return b.String()
}

// ConsumptionMarkdown renders per-row consumption next to its inputs.
func ConsumptionMarkdown(labels []string, population, perCapita, consumption []float64) string {
	var b strings.Builder
	b.WriteString("[CONSUMPTION]\n")
	writeTable(&b, []string{"", "Population", "Per capita", "Consumption"}, func(emit func(...string)) {
		for i := range consumption {
			label := fmt.Sprint(i + 1)
			if i < len(labels) && labels[i] != "" {
				label = safeCell(labels[i])
			}
			emit(label, exact(population[i]), exact(perCapita[i]), num(consumption[i]))
		}
	})
	return b.String()
}

func writeTable(b *strings.Builder, header []string, rows func(emit func(...string))) {
	line := func(cells ...string) {
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	line(header...)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	line(sep...)
	rows(line)
}

func num(f float64) string { return fmt.Sprintf("%.4g", f) }

// exact prints table cells in plain decimal notation so sums can be checked
// by hand, rounded to 6 places.
func exact(f float64) string {
	return strconv.FormatFloat(scalar.Round(f, 6), 'f', -1, 64)
}

func vec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.4f", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func safeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
