package renderer

import (
	"github.com/etnz/assettrack"
)

// UnmatchedMarkdown lists the transfers no counterparty was found for.
func UnmatchedMarkdown(txs []assettrack.Transaction) string {
	r := newRenderer()
	r.Printf("# Unmatched Transfers\n\n")
	if len(txs) == 0 {
		r.Printf("All transfers are matched.\n")
		return r.String()
	}
	r.Printf("| Date | Type | Service | Account | Vault | Asset | Measure | ID |\n")
	r.Printf("|:---|:---|:---|:---|:---|:---|---:|:---|\n")
	for _, tx := range txs {
		r.Row(day(tx.DateTime), tx.Type.String(), tx.Service, tx.Account, tx.Vault,
			tx.AssetType.String(), measure(tx.Measure(), tx.Unit), tx.ID)
	}
	return r.String()
}
