package report

import (
	"io"

	"github.com/linksleuth/linksleuth/internal/model"
)

// Writer defines the interface for assessment output.
// Implementations render a risk assessment in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the assessment to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(ra *model.RiskAssessment) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write assessments, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the assessment to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(ra *model.RiskAssessment) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(ra)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for assessment writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// sourceStatusText maps a source verdict to display text. Submitted gets
// its own wording so users know a verdict is pending, not missing.
func sourceStatusText(r model.SourceResult) string {
	switch r.Status {
	case model.StatusClean:
		return "clean"
	case model.StatusDanger:
		return "DANGER"
	case model.StatusSubmitted:
		return "analysis pending"
	default:
		if r.Err != "" {
			return "unavailable (" + r.Err + ")"
		}
		return "unavailable"
	}
}
