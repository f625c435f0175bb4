package formatter

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Supported output formats.
const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputSummary = "summary"
)

const defaultTermWidth = 120

// Formatter renders report data in one of the supported output formats.
type Formatter struct {
	output string
	w      io.Writer
	width  int
}

// New creates a formatter writing to stdout, sized to the terminal when
// stdout is one.
func New(output string) (*Formatter, error) {
	width := defaultTermWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return NewWithWriter(output, os.Stdout, width)
}

// NewWithWriter creates a formatter with an explicit writer and width.
func NewWithWriter(output string, w io.Writer, width int) (*Formatter, error) {
	switch output {
	case OutputTable, OutputJSON, OutputCSV, OutputSummary:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", output)
	}
	return &Formatter{output: output, w: w, width: width}, nil
}
