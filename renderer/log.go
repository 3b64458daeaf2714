package renderer

import (
	"fmt"
	"strings"
)

// mdRenderer accumulates a markdown document.
type mdRenderer struct {
	*strings.Builder
}

func newRenderer() *mdRenderer {
	return &mdRenderer{Builder: &strings.Builder{}}
}

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *mdRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// Row writes one table row.
func (r *mdRenderer) Row(cells ...string) {
	r.WriteString("|")
	for _, c := range cells {
		r.WriteString(" ")
		r.WriteString(escape(c))
		r.WriteString(" |")
	}
	r.WriteString("\n")
}

// escape keeps cell content from breaking the table.
func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

// LogMarkdown renders the processing log as a bullet list.
func LogMarkdown(lines []string) string {
	r := newRenderer()
	r.Printf("# Processing Log\n\n")
	if len(lines) == 0 {
		r.Printf("Nothing was processed.\n")
		return r.String()
	}
	for _, l := range lines {
		r.Printf("- %s\n", l)
	}
	return r.String()
}
