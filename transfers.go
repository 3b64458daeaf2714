package assettrack

import (
	"fmt"
	"slices"
	"time"
)

// TransferWindow is how far apart the two legs of a transfer may be reported.
const TransferWindow = 5 * time.Hour

// Reconciliation is the outcome of pairing transfer legs.
type Reconciliation struct {
	// Transactions holds every record to apply, with paired inbound legs
	// turned into transfers and shortfalls turned into fees in asset.
	Transactions []Transaction
	// Unmatched holds the legs that found no counterpart. They are never
	// applied.
	Unmatched []Transaction
}

// ReconcileTransfers pairs each inbound transfer leg with the outbound leg of
// the same item reported within TransferWindow. Amounts are not compared:
// custodians disagree on them, and the difference is booked as a fee in asset
// paid from the source.
func ReconcileTransfers(txs []Transaction) (Reconciliation, error) {
	working := slices.Clone(txs)

	inbound := make([]int, 0)
	for i, tx := range working {
		if tx.Type == TransferIn {
			inbound = append(inbound, i)
		}
	}
	slices.SortStableFunc(inbound, func(a, b int) int {
		return working[a].DateTime.Compare(working[b].DateTime)
	})

	consumed := make(map[int]bool)
	consumedIDs := make(map[string]bool)
	dropped := make(map[int]bool)
	var unmatched []Transaction
	var fees []Transaction

	for _, in := range inbound {
		receive := working[in]
		if consumedIDs[receive.ID] {
			// the outbound side of this leg already served another one.
			unmatched = append(unmatched, receive)
			dropped[in] = true
			continue
		}
		out, ok := findOutboundLeg(working, receive, consumed)
		if !ok {
			unmatched = append(unmatched, receive)
			dropped[in] = true
			continue
		}
		source := working[out]
		if !source.AmountPaid.IsPositive() {
			return Reconciliation{}, fmt.Errorf("%w: outbound leg %s of transfer %s has no paid amount", ErrMalformedInput, source.ID, receive.ID)
		}
		if !receive.AmountReceived.IsPositive() {
			return Reconciliation{}, fmt.Errorf("%w: inbound leg of transfer %s has no received amount", ErrMalformedInput, receive.ID)
		}

		received, err := ConvertUnit(receive.AmountReceived, receive.Unit, source.Unit)
		if err != nil {
			return Reconciliation{}, fmt.Errorf("transfer %s: %w", receive.ID, err)
		}
		if shortfall := source.AmountPaid.Sub(received); shortfall.IsPositive() {
			fee := Transaction{
				Service:    source.Service,
				Account:    source.Account,
				Vault:      source.Vault,
				DateTime:   source.DateTime,
				ID:         uniqueID(source.ID, working, fees),
				Type:       FeeInAsset,
				AmountPaid: shortfall,
				Unit:       source.Unit,
				Currency:   source.Currency,
				AssetType:  source.AssetType,
				ItemType:   receive.ItemType,
				Memo:       "Transfer fee (in asset) from " + source.Memo,
				SpotPrice:  source.SpotPrice,
			}
			fees = append(fees, fee)
		}

		working[in] = receive.AsTransfer(TransferSource{Service: source.Service, Account: source.Account, Vault: source.Vault})
		consumed[out] = true
		consumedIDs[source.ID] = true
	}

	result := Reconciliation{Unmatched: unmatched}
	for i, tx := range working {
		switch {
		case consumed[i], dropped[i]:
		case tx.Type == TransferOut:
			result.Unmatched = append(result.Unmatched, tx)
		default:
			result.Transactions = append(result.Transactions, tx)
		}
	}
	result.Transactions = append(result.Transactions, fees...)
	return result, nil
}

// findOutboundLeg returns the index of the earliest unconsumed outbound leg
// of the same item within TransferWindow of receive.
func findOutboundLeg(txs []Transaction, receive Transaction, consumed map[int]bool) (int, bool) {
	from, to := receive.DateTime.Add(-TransferWindow), receive.DateTime.Add(TransferWindow)
	best := -1
	for i, tx := range txs {
		if consumed[i] || tx.Type != TransferOut || tx.ItemType != receive.ItemType {
			continue
		}
		if tx.DateTime.Before(from) || tx.DateTime.After(to) {
			continue
		}
		if best < 0 || tx.DateTime.Before(txs[best].DateTime) {
			best = i
		}
	}
	return best, best >= 0
}
