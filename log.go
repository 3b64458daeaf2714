package assettrack

import (
	"fmt"
	"io"
	"log/slog"
)

// LogWriter receives one human readable line per processing step.
type LogWriter interface {
	WriteLine(line string)
}

// slogWriter forwards lines to a structured logger.
type slogWriter struct{ logger *slog.Logger }

// NewSlogWriter returns a LogWriter logging each line at info level.
func NewSlogWriter(logger *slog.Logger) LogWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return slogWriter{logger: logger}
}

func (w slogWriter) WriteLine(line string) { w.logger.Info(line) }

// textWriter prints lines verbatim.
type textWriter struct{ w io.Writer }

// NewTextWriter returns a LogWriter printing one line per entry to w.
func NewTextWriter(w io.Writer) LogWriter { return textWriter{w: w} }

func (w textWriter) WriteLine(line string) { fmt.Fprintln(w.w, line) }

// discard drops every line.
type discard struct{}

func (discard) WriteLine(string) {}
