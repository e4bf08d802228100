package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var sampleRows = []string{
	"Group;Concentration (g/L);Temp (°F);Score;LocaleNumber;Category;Note",
	"A;0,5;70;10,0;1.000,0;alpha;first",
	"A;0,6;71;11,0;1.100,0;alpha;second",
	"A;0,55;69;9,5;0.900,0;beta;third",
	"B;0,7;75;10,5;1.050,0;alpha;fourth",
	"B;0,65;74;9,8;0.980,0;beta;fifth",
	"B;0,68;73;10,2;1.020,0;alpha;sixth",
	"A;0,52;68;8,8;0.880,0;gamma;seventh",
	"B;0,75;76;9,7;0.970,0;beta;eighth",
	"A;3,0;95;50,0;5.000,0;alpha;ninth",
	"B;0,66;72;10,1;1.010,0;gamma;tenth",
}

func writeCSV(t *testing.T, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadCSVLocaleNumbers(t *testing.T) {
	path := writeCSV(t, "metrics.csv", sampleRows)
	opt := DefaultOptions()
	opt.Delimiter = ';'
	opt.DecimalSeparator = ','
	opt.ThousandsSeparator = '.'

	tbl, err := Load(path, opt)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Name != "metrics.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	if tbl.Len() != 10 {
		t.Fatalf("rows = %d, want 10", tbl.Len())
	}
	wantCols := []string{"Group", "Concentration", "Temp", "Score", "LocaleNumber", "Category", "Note"}
	if diff := cmp.Diff(wantCols, tbl.Columns()); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	if tbl.Units[1] != "g/L" || tbl.Units[2] != "°F" {
		t.Fatalf("units = %#v", tbl.Units)
	}

	conc, err := tbl.Floats("concentration")
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	wantConc := []float64{0.5, 0.6, 0.55, 0.7, 0.65, 0.68, 0.52, 0.75, 3.0, 0.66}
	if diff := cmp.Diff(wantConc, conc); diff != "" {
		t.Fatalf("concentration (-want +got):\n%s", diff)
	}

	locale, err := tbl.Floats("LocaleNumber")
	if err != nil {
		t.Fatalf("Floats locale: %v", err)
	}
	wantLocale := []float64{1000, 1100, 900, 1050, 980, 1020, 880, 970, 5000, 1010}
	if diff := cmp.Diff(wantLocale, locale); diff != "" {
		t.Fatalf("locale (-want +got):\n%s", diff)
	}
}

func TestLookupWithUnitSuffix(t *testing.T) {
	tbl := NewTable("t", []string{"Mass [mg/L]", "Temp (°F)"}, nil)
	for _, name := range []string{"Mass", "mass", "Mass [mg/L]", " temp ", "Temp (°F)"} {
		if _, err := tbl.Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
	_, err := tbl.Lookup("Pressure")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err = %v, want ErrColumnNotFound", err)
	}
	if !strings.Contains(err.Error(), "available: Mass, Temp") {
		t.Fatalf("error should list columns: %v", err)
	}
}

func TestFloatsSkipsMissingAndRejectsText(t *testing.T) {
	tbl := NewTable("t", []string{"x", "y"}, [][]string{
		{"1", "2"},
		{"", "3"},
		{"NA", "4"},
		{"4", "oops"},
		{"5"},
	})
	xs, err := tbl.Floats("x")
	if err != nil {
		t.Fatalf("Floats x: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 4, 5}, xs); diff != "" {
		t.Fatalf("x (-want +got):\n%s", diff)
	}
	_, err = tbl.Floats("y")
	if !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("err = %v, want ErrNotNumeric", err)
	}
	if !strings.Contains(err.Error(), "row 4") {
		t.Fatalf("error should name the row: %v", err)
	}
}

func TestFloatsIndexedKeepsRowPositions(t *testing.T) {
	tbl := NewTable("t", []string{"y"}, [][]string{{"10"}, {""}, {"14"}, {"NA"}, {"16"}})
	vals, pos, err := tbl.FloatsIndexed("y")
	if err != nil {
		t.Fatalf("FloatsIndexed: %v", err)
	}
	if diff := cmp.Diff([]float64{10, 14, 16}, vals); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 3, 5}, pos); diff != "" {
		t.Fatalf("positions (-want +got):\n%s", diff)
	}
	if _, _, err := NewTable("t", []string{"y"}, [][]string{{""}}).FloatsIndexed("y"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestFloatsEmptyColumn(t *testing.T) {
	tbl := NewTable("t", []string{"x"}, [][]string{{""}, {"n/a"}})
	if _, err := tbl.Floats("x"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestPairsDropsIncompleteRows(t *testing.T) {
	tbl := NewTable("t", []string{"Year", "Output"}, [][]string{
		{"2001", "10"},
		{"2002", ""},
		{"", "12"},
		{"2004", "13"},
	})
	xs, ys, err := tbl.Pairs("Year", "Output")
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if diff := cmp.Diff([]float64{2001, 2004}, xs); diff != "" {
		t.Fatalf("xs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{10, 13}, ys); diff != "" {
		t.Fatalf("ys (-want +got):\n%s", diff)
	}
}

func TestReadCSVMaxRowsAndTSV(t *testing.T) {
	path := writeCSV(t, "data.tsv", []string{"a\tb", "1\t2", "3\t4", "5\t6"})
	tbl, err := Load(path, Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}
	bs, err := tbl.Floats("b")
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	if diff := cmp.Diff([]float64{2, 4}, bs); diff != "" {
		t.Fatalf("b (-want +got):\n%s", diff)
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), ',', 0); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestParseNumericAutoDetect(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"1,234", 1234, true},
		{"1,5", 1.5, true},
		{"0,125", 0.125, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"-3,25", -3.25, true},
		{"45%", 45, true},
		{"1 000", 1000, true},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumeric(tt.in, Options{})
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseNumeric(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
