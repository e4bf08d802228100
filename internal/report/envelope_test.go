package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestEncodeJSON(t *testing.T) {
	e := New("ttest", "data.csv", map[string]float64{"t": 1.5}, "[T-TEST]\n")
	b, err := e.Encode(FormatJSON)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var got struct {
		ID      string             `json:"id"`
		Command string             `json:"command"`
		Source  string             `json:"source"`
		Result  map[string]float64 `json:"result"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, b)
	}
	if _, err := uuid.Parse(got.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", got.ID, err)
	}
	if got.Command != "ttest" || got.Source != "data.csv" || got.Result["t"] != 1.5 {
		t.Fatalf("envelope = %#v", got)
	}
	if strings.Contains(string(b), "[T-TEST]") {
		t.Fatal("json output should not embed markdown")
	}
}

func TestEncodeMarkdownWithFiles(t *testing.T) {
	e := New("chart normal", "", nil, "[CHART]\ntitle: Normal Distribution\n")
	e.Files = append(e.Files, "normal.png")
	b, err := e.Encode("")
	assert.NilError(t, err)
	assert.Equal(t, string(b), "[CHART]\ntitle: Normal Distribution\n\n[FILES]\n- normal.png\n")
}

func TestEncodeUnknownFormat(t *testing.T) {
	_, err := New("x", "", nil, "").Encode("xml")
	assert.Check(t, is.ErrorIs(err, ErrUnknownFormat))
}

func TestWriteToFileOrWriter(t *testing.T) {
	e := New("describe", "a.csv", nil, "[DATASET SUMMARY]\n")
	var buf bytes.Buffer
	assert.NilError(t, e.Write(&buf, FormatMarkdown, ""))
	assert.Equal(t, buf.String(), "[DATASET SUMMARY]\n")

	path := filepath.Join(t.TempDir(), "out", "summary.md")
	buf.Reset()
	assert.NilError(t, e.Write(&buf, FormatMarkdown, path))
	assert.Equal(t, buf.Len(), 0, "writer should be untouched")
	b, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(b), "[DATASET SUMMARY]\n")
}
