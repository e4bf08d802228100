package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".xlsx")
}

// Load reads the selected sheet. If SheetName is empty and SheetIndex <= 0,
// the first sheet is used. SheetIndex is 1-based (Sheet1 == 1).
func (xlsxLoader) Load(p string, opt Options) (*Table, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb, err := readWorkbook(zr)
	if err != nil {
		return nil, err
	}
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook '%s'", err, filepath.Base(p))
	}
	sheetXML, err := readZipFile(zr, target)
	if err != nil {
		return nil, err
	}
	rr := newSheetRowReader(sheetXML, wb.shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return nil, fmt.Errorf("sheet %s: %w", target, ErrEmpty)
	}
	var rows [][]string
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rows = append(rows, row)
	}
	t := NewTable(filepath.Base(p), header, rows)
	if opt.SheetName != "" {
		t.Name = fmt.Sprintf("%s (sheet: %s)", t.Name, opt.SheetName)
	}
	return t, nil
}

type workbook struct {
	sheets []wbSheet
	rels   map[string]string // r:id -> target
	shared []string
}

type wbSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

func readWorkbook(zr *zip.Reader) (*workbook, error) {
	wbXML, err := readZipFile(zr, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	var doc struct {
		Sheets []wbSheet `xml:"sheets>sheet"`
	}
	if err := xml.Unmarshal(wbXML, &doc); err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}
	wb := &workbook{sheets: doc.Sheets, rels: map[string]string{}}

	if relsXML, err := readZipFile(zr, "xl/_rels/workbook.xml.rels"); err == nil {
		var rels struct {
			Items []struct {
				ID     string `xml:"Id,attr"`
				Target string `xml:"Target,attr"`
			} `xml:"Relationship"`
		}
		if err := xml.Unmarshal(relsXML, &rels); err != nil {
			return nil, fmt.Errorf("parse relationships: %w", err)
		}
		for _, r := range rels.Items {
			if r.ID != "" && r.Target != "" {
				wb.rels[r.ID] = r.Target
			}
		}
	}
	// sharedStrings.xml is optional; inline strings need no table.
	if sharedXML, err := readZipFile(zr, "xl/sharedStrings.xml"); err == nil {
		wb.shared = parseSharedStrings(sharedXML)
	}
	return wb, nil
}

// sheetPath resolves the ZIP entry of the requested sheet.
func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		names := make([]string, len(wb.sheets))
		for i, s := range wb.sheets {
			names[i] = s.Name
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		return "", fmt.Errorf("sheet '%s' not found (available sheets: %s)", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index)), nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s not found in xlsx", name)
}

func parseSharedStrings(data []byte) []string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams rows of a worksheet as string slices.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the next <row>, placing each cell at the column given by its
// reference so gaps become empty strings.
func (r *sheetRowReader) Next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				inRow = true
				row = nil
				continue
			}
			if !inRow || se.Name.Local != "c" {
				continue
			}
			var ref, typ string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "r":
					ref = a.Value
				case "t":
					typ = a.Value
				}
			}
			col := len(row)
			if ref != "" {
				if c := colIndexFromRef(ref); c >= 0 {
					col = c
				}
			}
			for len(row) <= col {
				row = append(row, "")
			}
			row[col] = r.cellValue(typ)
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

// cellValue consumes tokens up to </c> and returns the text of <v> or <is><t>.
func (r *sheetRowReader) cellValue(typ string) string {
	var sb strings.Builder
	capture := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				capture = true
			}
		case xml.EndElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				capture = false
			}
			if se.Name.Local == "c" {
				return r.resolve(typ, sb.String())
			}
		case xml.CharData:
			if capture {
				sb.Write(se)
			}
		}
	}
	return r.resolve(typ, sb.String())
}

func (r *sheetRowReader) resolve(typ, val string) string {
	if typ != "s" {
		return val
	}
	idx, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || idx < 0 || idx >= len(r.shared) {
		return ""
	}
	return r.shared[idx]
}

// colIndexFromRef maps refs like "C12" to a 0-based column index (2).
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

// normalizeRelPath converts relationship Target paths to ZIP entry names.
// Targets may carry a leading slash ("/xl/worksheets/sheet1.xml") that ZIP
// entries do not.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
