package renderer

import (
	"github.com/etnz/assettrack"
)

// HoldingsMarkdown renders the current measure and basis per asset and item.
func HoldingsMarkdown(holdings []assettrack.Holding) string {
	r := newRenderer()
	r.Printf("# Holdings\n\n")
	if len(holdings) == 0 {
		r.Printf("Nothing is held.\n")
		return r.String()
	}
	r.Printf("| Asset | Item | Measure | Basis |\n")
	r.Printf("|:---|:---|---:|---:|\n")
	for _, h := range holdings {
		r.Row(h.AssetType.String(), h.ItemType, measure(h.Measure, h.Unit), h.Basis.String())
	}
	return r.String()
}
