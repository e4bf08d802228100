package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/statloom-cli/internal/analysis"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultHighlightZ shades the upper 5% tail.
const DefaultHighlightZ = 1.645

// Bar draws grouped bars, one group per label. xLabel names the category column.
func Bar(labels []string, series []Series, title, xLabel string) (*plot.Plot, error) {
	if err := checkSeries(labels, series); err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	p := newPlot(title, xLabel, "Value")
	width := vg.Points(40) / vg.Length(len(series))
	for i, s := range series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return nil, fmt.Errorf("bar chart %q: %w", s.Name, err)
		}
		bars.Color = seriesColor(s, i)
		bars.LineStyle.Width = 0
		bars.Offset = width * vg.Length(float64(i)-float64(len(series)-1)/2)
		p.Add(bars)
		if len(series) > 1 {
			p.Legend.Add(s.Name, bars)
		}
	}
	p.Legend.Top = true
	p.NominalX(labels...)
	rotateXTicks(p)
	return p, nil
}

// Line draws one line per series against the category labels, with a legend
// when there is more than one.
func Line(labels []string, series []Series, title, xLabel string) (*plot.Plot, error) {
	if err := checkSeries(labels, series); err != nil {
		return nil, fmt.Errorf("line chart: %w", err)
	}
	p := newPlot(title, xLabel, "Value")
	for i, s := range series {
		l, err := plotter.NewLine(indexed(s.Values))
		if err != nil {
			return nil, fmt.Errorf("line chart %q: %w", s.Name, err)
		}
		l.Color = seriesColor(s, i)
		p.Add(l)
		if len(series) > 1 {
			p.Legend.Add(s.Name, l)
		}
	}
	p.Legend.Top = true
	p.NominalX(labels...)
	rotateXTicks(p)
	return p, nil
}

// Normal draws the standard normal density over [-5, 5) and shades the area
// with highlightZ < x < 4. highlightZ 0 means DefaultHighlightZ.
func Normal(highlightZ float64) (*plot.Plot, error) {
	if highlightZ == 0 {
		highlightZ = DefaultHighlightZ
	}
	if highlightZ >= 4 || highlightZ < -5 {
		return nil, fmt.Errorf("normal chart: highlight z %v outside [-5, 4): %w", highlightZ, analysis.ErrInvalidArgument)
	}
	const (
		lo, hi, step = -5.0, 5.0, 0.001
		shadeTo      = 4.0
	)
	n := int(math.Round((hi - lo) / step))
	curve := make(plotter.XYs, n)
	area := plotter.XYs{}
	for i := 0; i < n; i++ {
		x := lo + float64(i)*step
		y := distuv.UnitNormal.Prob(x)
		curve[i] = plotter.XY{X: x, Y: y}
		if x > highlightZ && x < shadeTo {
			area = append(area, curve[i])
		}
	}
	p := newPlot("Normal Distribution", "z value", "Density")
	if len(area) > 0 {
		poly := append(plotter.XYs{{X: area[0].X, Y: 0}}, area...)
		poly = append(poly, plotter.XY{X: area[len(area)-1].X, Y: 0})
		shade, err := plotter.NewPolygon(poly)
		if err != nil {
			return nil, fmt.Errorf("normal chart: %w", err)
		}
		shade.Color = blue
		shade.LineStyle.Width = 0
		p.Add(shade)
	}
	l, err := plotter.NewLine(curve)
	if err != nil {
		return nil, fmt.Errorf("normal chart: %w", err)
	}
	l.Color = green
	p.Add(l)
	return p, nil
}

// Scatter draws the points with their least-squares line over the sorted
// unique x values and returns Pearson's r.
func Scatter(x, y []float64, xLabel, yLabel, title string) (*plot.Plot, float64, error) {
	r, err := analysis.Pearson(x, y)
	if err != nil {
		return nil, 0, fmt.Errorf("scatter chart: %w", err)
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	p := newPlot(title, xLabel, yLabel)
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, 0, fmt.Errorf("scatter chart: %w", err)
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	ux := uniqueSorted(x)
	fit := make(plotter.XYs, len(ux))
	for i, v := range ux {
		fit[i] = plotter.XY{X: v, Y: alpha + beta*v}
	}
	l, err := plotter.NewLine(fit)
	if err != nil {
		return nil, 0, fmt.Errorf("scatter chart: %w", err)
	}
	l.Color = black
	p.Add(l)
	return p, r, nil
}

// RegressionPlot draws the observed values as a dashed line with markers, the
// regression line from one step before the data to one step past the last
// forecast, and the forecasts as large red points.
func RegressionPlot(reg *analysis.Regression, xLabel, yLabel string) (*plot.Plot, error) {
	if reg == nil || len(reg.Rows) == 0 {
		return nil, fmt.Errorf("regression chart: %w", ErrNoSeries)
	}
	if xLabel == "" {
		xLabel = "Years"
	}
	if yLabel == "" {
		yLabel = "Values"
	}
	p := newPlot("Regression Line for Future Predictions", xLabel, yLabel)

	observed := make(plotter.XYs, 0, len(reg.Rows))
	for _, row := range reg.Rows {
		observed = append(observed, plotter.XY{X: row.X, Y: row.Y})
	}
	sort.Slice(observed, func(i, j int) bool { return observed[i].X < observed[j].X })
	line, points, err := plotter.NewLinePoints(observed)
	if err != nil {
		return nil, fmt.Errorf("regression chart: %w", err)
	}
	line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3.5)
	points.GlyphStyle.Color = green
	p.Add(line, points)

	first := observed[0].X - 1
	last := observed[len(observed)-1].X + 1
	if n := len(reg.Forecasts); n > 0 {
		last = reg.Forecasts[n-1].X + 1
	}
	fn := plotter.NewFunction(reg.Predict)
	fn.XMin, fn.XMax = first, last
	fn.Samples = 2
	fn.Width = vg.Points(1.5)
	p.Add(fn)

	if len(reg.Forecasts) > 0 {
		fc := make(plotter.XYs, len(reg.Forecasts))
		for i, f := range reg.Forecasts {
			fc[i] = plotter.XY{X: f.X, Y: f.Y}
		}
		sc, err := plotter.NewScatter(fc)
		if err != nil {
			return nil, fmt.Errorf("regression chart: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(7)
		sc.GlyphStyle.Color = red
		p.Add(sc)
	}
	rotateXTicks(p)
	return p, nil
}

// Compare draws production (red) against consumption (green) per state or region.
func Compare(labels []string, production, consumption []float64) (*plot.Plot, error) {
	series := []Series{
		{Name: "Production", Values: production, Color: red},
		{Name: "Consumption", Values: consumption, Color: green},
	}
	p, err := Line(labels, series, "Comparison of Production and Consumption", "State/Region")
	if err != nil {
		return nil, err
	}
	p.Y.Label.Text = "Units"
	return p, nil
}

func uniqueSorted(v []float64) []float64 {
	cp := append([]float64(nil), v...)
	sort.Float64s(cp)
	var out []float64
	for _, x := range cp {
		if len(out) == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
