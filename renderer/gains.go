package renderer

import (
	"fmt"

	"github.com/etnz/assettrack"
)

// GainsMarkdown renders the realized gains of the sales made in year, with a
// total row. Sales in different currencies cannot be totaled.
func GainsMarkdown(sales []assettrack.TaxableSale, year int) (string, error) {
	r := newRenderer()
	r.Printf("# Realized Gains for %d\n\n", year)

	sales = assettrack.SalesIn(sales, year)
	if len(sales) == 0 {
		r.Printf("No sales in %d.\n", year)
		return r.String(), nil
	}

	r.Printf("| Lot | Service | Asset | Item | Bought | Sold | Measure | Adjusted Basis | Proceeds | Net Gain |\n")
	r.Printf("|:---|:---|:---|:---|:---|:---|---:|---:|---:|---:|\n")
	var basis, proceeds, gain assettrack.Money
	for i, s := range sales {
		g, err := s.NetGain()
		if err != nil {
			return "", fmt.Errorf("sale of lot %s: %w", s.LotID(), err)
		}
		r.Row(s.LotID(), s.Service(), s.AssetType().String(), s.ItemType(),
			day(s.PurchaseDate()), day(s.SaleDate()), measure(s.Measure(), s.Unit()),
			s.AdjustedBasis().Value.String(), s.Proceeds().String(), g.String())

		if i == 0 {
			basis, proceeds, gain = s.AdjustedBasis().Value, s.Proceeds(), g
			continue
		}
		if basis, err = basis.Add(s.AdjustedBasis().Value); err != nil {
			return "", err
		}
		if proceeds, err = proceeds.Add(s.Proceeds()); err != nil {
			return "", err
		}
		if gain, err = gain.Add(g); err != nil {
			return "", err
		}
	}
	r.Printf("| **Total** | | | | | | | **%s** | **%s** | **%s** |\n", basis, proceeds, gain)
	return r.String(), nil
}
