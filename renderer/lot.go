package renderer

import (
	"fmt"
	"io"

	"github.com/etnz/assettrack"
)

// LotMarkdown renders the state of one lot followed by its history.
func LotMarkdown(l *assettrack.Lot) string {
	r := newRenderer()
	r.Printf("# Lot %s\n\n", l.ID)
	r.Printf("| Field | Value |\n")
	r.Printf("|:---|:---|\n")
	r.Row("Asset", fmt.Sprintf("%s (%s)", l.AssetType, l.ItemType))
	r.Row("Purchased", day(l.PurchaseDate))
	if closed, ok := l.CloseDate(); ok {
		r.Row("Closed", day(closed))
	}
	r.Row("Location", fmt.Sprintf("%s / %s / %s", l.Service(), l.Account(), l.Vault()))
	r.Row("Original", fmt.Sprintf("%s for %s", measure(l.OriginalAmount, l.Unit), l.OriginalBasis.Value))
	r.Row("Current", fmt.Sprintf("%s for %s", measure(l.Current(), l.Unit), l.AdjustedBasis().Value))

	ConditionalBlock(r, func(w io.Writer) bool {
		history := l.History()
		fmt.Fprintf(w, "\n## History\n\n")
		for _, h := range history {
			fmt.Fprintf(w, "- %s\n", h)
		}
		return len(history) > 0
	})
	return r.String()
}
