package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Loader reads one flat-file format into a Table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a file format no loader accepts.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load selects a loader based on filename and reads the file into a Table.
// The table keeps the numeric separators from opt for later column parsing.
func Load(path string, opt Options) (*Table, error) {
	for _, l := range registry {
		if !l.CanLoad(path) {
			continue
		}
		t, err := l.Load(path, opt)
		if err != nil {
			return nil, err
		}
		t.WithNumberFormat(opt.DecimalSeparator, opt.ThousandsSeparator)
		logrus.WithFields(logrus.Fields{
			"file":    t.Name,
			"rows":    t.Len(),
			"columns": len(t.Header),
		}).Debug("dataset loaded")
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
