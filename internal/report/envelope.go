// Package report wraps command results for output as markdown or JSON.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KaramelBytes/statloom-cli/internal/utils"
	"github.com/google/uuid"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ErrUnknownFormat indicates an output format other than markdown or json.
var ErrUnknownFormat = errors.New("unknown output format")

// Envelope is one command run and its result.
type Envelope struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Result    any       `json:"result"`
	// Files lists artifacts written by the run, such as charts.
	Files []string `json:"files,omitempty"`

	markdown string
}

// New creates an envelope with a fresh run id.
func New(command, source string, result any, markdown string) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		Command:   command,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Result:    result,
		markdown:  markdown,
	}
}

// Markdown returns the human-readable rendering of the result.
func (e *Envelope) Markdown() string {
	var b strings.Builder
	b.WriteString(e.markdown)
	if len(e.Files) > 0 {
		if e.markdown != "" && !strings.HasSuffix(e.markdown, "\n\n") {
			b.WriteString("\n")
		}
		b.WriteString("[FILES]\n")
		for _, f := range e.Files {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

// Encode renders the envelope in the given format.
func (e *Envelope) Encode(format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatMarkdown, "md":
		return []byte(e.Markdown()), nil
	case FormatJSON:
		b, err := utils.PrettyJSON(e)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q (use markdown or json)", ErrUnknownFormat, format)
	}
}

// Write encodes the envelope to path (atomically) when path is set, or to w.
func (e *Envelope) Write(w io.Writer, format, path string) error {
	b, err := e.Encode(format)
	if err != nil {
		return err
	}
	if path != "" {
		if err := utils.SafeWriteFile(path, b); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
