package dataset

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	// ErrColumnNotFound indicates a requested column is not in the header.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric indicates a non-empty cell could not be parsed as a number.
	ErrNotNumeric = errors.New("value is not numeric")
	// ErrEmpty indicates a column or table without usable values.
	ErrEmpty = errors.New("no data")
)

// Options controls how flat files are read and how cells become numbers.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension ('\t' for .tsv, else ',').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
}

// DefaultOptions returns reasonable defaults for reading datasets.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Table is a header plus string cells, as read from a flat file.
type Table struct {
	Name   string
	Header []string
	// Units holds the unit suffix split from each header, e.g. "g/L" for "Mass (g/L)".
	Units []string
	Rows  [][]string

	numeric Options
	index   map[string]int
}

// NewTable builds a table from a header and rows. Short rows are padded.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, index: map[string]int{}}
	t.Header = make([]string, len(header))
	t.Units = make([]string, len(header))
	for i, h := range header {
		raw := strings.TrimSpace(h)
		clean, unit := splitUnits(raw)
		t.Header[i] = clean
		t.Units[i] = unit
		t.index[strings.ToLower(clean)] = i
		if raw != clean {
			if _, ok := t.index[strings.ToLower(raw)]; !ok {
				t.index[strings.ToLower(raw)] = i
			}
		}
	}
	for _, rec := range rows {
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WithNumberFormat sets the separators used by Floats and Pairs.
func (t *Table) WithNumberFormat(decimal, thousands rune) *Table {
	t.numeric.DecimalSeparator = decimal
	t.numeric.ThousandsSeparator = thousands
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Columns returns the cleaned header names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.Header))
	copy(out, t.Header)
	return out
}

// Lookup returns the index of a column. Matching is case-insensitive on the
// trimmed name, with or without its unit suffix.
func (t *Table) Lookup(col string) (int, error) {
	idx, ok := t.index[strings.ToLower(strings.TrimSpace(col))]
	if !ok {
		return -1, fmt.Errorf("%w: %q (available: %s)", ErrColumnNotFound, col, strings.Join(t.Header, ", "))
	}
	return idx, nil
}

// Strings returns the trimmed cells of a column.
func (t *Table) Strings(col string) ([]string, error) {
	idx, err := t.Lookup(col)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = strings.TrimSpace(row[idx])
	}
	return out, nil
}

// Floats parses a column as numbers. Missing cells are skipped; any other
// unparsable cell is an error.
func (t *Table) Floats(col string) ([]float64, error) {
	idx, err := t.Lookup(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(t.Rows))
	for i, row := range t.Rows {
		x, ok, err := t.cell(row[idx], i, idx)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("column %q: %w", t.Header[idx], ErrEmpty)
	}
	return out, nil
}

// FloatsIndexed is Floats plus the 1-based row position of every value, so
// skipped cells do not shift later values.
func (t *Table) FloatsIndexed(col string) (vals, pos []float64, err error) {
	idx, err := t.Lookup(col)
	if err != nil {
		return nil, nil, err
	}
	for i, row := range t.Rows {
		x, ok, err := t.cell(row[idx], i, idx)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			vals = append(vals, x)
			pos = append(pos, float64(i+1))
		}
	}
	if len(vals) == 0 {
		return nil, nil, fmt.Errorf("column %q: %w", t.Header[idx], ErrEmpty)
	}
	return vals, pos, nil
}

// Pairs returns row-aligned numeric values of two columns, dropping rows
// where either cell is missing.
func (t *Table) Pairs(xcol, ycol string) (xs, ys []float64, err error) {
	xi, err := t.Lookup(xcol)
	if err != nil {
		return nil, nil, err
	}
	yi, err := t.Lookup(ycol)
	if err != nil {
		return nil, nil, err
	}
	for i, row := range t.Rows {
		x, okx, err := t.cell(row[xi], i, xi)
		if err != nil {
			return nil, nil, err
		}
		y, oky, err := t.cell(row[yi], i, yi)
		if err != nil {
			return nil, nil, err
		}
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) == 0 {
		return nil, nil, fmt.Errorf("columns %q/%q: %w", t.Header[xi], t.Header[yi], ErrEmpty)
	}
	return xs, ys, nil
}

// cell parses one cell. ok is false for missing values.
func (t *Table) cell(raw string, row, col int) (float64, bool, error) {
	v := strings.TrimSpace(raw)
	if isMissing(v) {
		return 0, false, nil
	}
	x, ok := parseNumeric(v, t.numeric)
	if !ok || math.IsInf(x, 0) {
		return 0, false, fmt.Errorf("row %d, column %q: %w: %q", row+1, t.Header[col], ErrNotNumeric, v)
	}
	return x, true, nil
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Alpha (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
