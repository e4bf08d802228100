// Package chart renders the statistical charts as gonum plots.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	// ErrNoSeries indicates a chart request without data to draw.
	ErrNoSeries = errors.New("no series to plot")
	// ErrUnsupportedFormat indicates an output format gonum/plot cannot write.
	ErrUnsupportedFormat = errors.New("unsupported chart format")
)

var (
	red   = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	green = color.RGBA{R: 30, G: 150, B: 60, A: 255}
	blue  = color.RGBA{R: 31, G: 119, B: 180, A: 160}
	black = color.Black
)

// Series is one named set of values drawn against the category labels.
type Series struct {
	Name   string
	Values []float64
	// Color overrides the palette color when set.
	Color color.Color
}

// Size is a chart size in inches.
type Size struct {
	Width, Height float64
}

// DefaultSize matches a 10x5 inch figure.
var DefaultSize = Size{Width: 10, Height: 5}

func (s Size) lengths() (vg.Length, vg.Length) {
	if s.Width <= 0 || s.Height <= 0 {
		s = DefaultSize
	}
	return vg.Length(s.Width) * vg.Inch, vg.Length(s.Height) * vg.Inch
}

// Formats lists the file extensions Save accepts.
var Formats = []string{"png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps"}

// Save writes p to path; the extension picks the format.
func Save(p *plot.Plot, path string, size Size) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supported(ext) {
		return fmt.Errorf("%w: %q (use one of %s)", ErrUnsupportedFormat, ext, strings.Join(Formats, ", "))
	}
	w, h := size.lengths()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// Render writes p to out in the given format.
func Render(p *plot.Plot, out io.Writer, format string, size Size) error {
	format = strings.ToLower(format)
	if !supported(format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	w, h := size.lengths()
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// rotateXTicks turns category labels vertical.
func rotateXTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func seriesColor(s Series, i int) color.Color {
	if s.Color != nil {
		return s.Color
	}
	return plotutil.Color(i)
}

func checkSeries(labels []string, series []Series) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return fmt.Errorf("series %q has %d values for %d labels", s.Name, len(s.Values), len(labels))
		}
	}
	return nil
}

func indexed(vals []float64) plotter.XYs {
	xys := make(plotter.XYs, len(vals))
	for i, v := range vals {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	return xys
}
