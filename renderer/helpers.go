package renderer

import (
	"bytes"
	"io"
	"time"

	"github.com/etnz/assettrack"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

func day(t time.Time) string { return t.Format(time.DateOnly) }

func measure(q assettrack.Quantity, u assettrack.Unit) string { return q.String() + " " + u.String() }
