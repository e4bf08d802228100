package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/statloom-cli/internal/utils"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.md")
	assert.NilError(t, utils.SafeWriteFile(path, []byte("hello")))

	b, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(b), "hello")

	// Overwrite in place.
	assert.NilError(t, utils.SafeWriteFile(path, []byte("again")))
	b, err = os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(b), "again")

	entries, err := os.ReadDir(filepath.Dir(path))
	assert.NilError(t, err)
	assert.Check(t, is.Len(entries, 1), "temp files left behind")
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"n": 3})
	assert.NilError(t, err)
	assert.Check(t, is.Contains(string(b), "\n  \"n\": 3"))

	_, err = utils.PrettyJSON(func() {})
	assert.ErrorContains(t, err, "marshal json")
}

func TestResolveOutput(t *testing.T) {
	cases := []struct {
		dir, path, want string
	}{
		{"", "a.png", "a.png"},
		{"/out", "a.png", filepath.Join("/out", "a.png")},
		{"/out", "sub/a.png", "sub/a.png"},
		{"/out", "/abs/a.png", "/abs/a.png"},
		{"/out", "", ""},
	}
	for _, c := range cases {
		assert.Check(t, is.Equal(utils.ResolveOutput(c.dir, c.path), c.want), "dir=%q path=%q", c.dir, c.path)
	}
}
