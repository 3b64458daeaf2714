package assettrack

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Day is the length of a calendar day, for exchange windows.
const Day = 24 * time.Hour

// ExchangeMatcher folds a sale and a purchase that are two sides of one asset
// swap into a transfer, so the basis of what was sold carries over to what
// was bought.
//
// Known limitation: when two sales qualify for the same purchase, the first
// one processed takes it.
type ExchangeMatcher interface {
	FormLikeKindExchanges(txs []Transaction, w LogWriter) ([]Transaction, error)
}

// MatchAcrossTransactions matches each sale with every purchase of the same
// item in another vault within Window, oldest first, until the sale is used up.
type MatchAcrossTransactions struct {
	Window time.Duration
}

func NewMatchAcrossTransactions() *MatchAcrossTransactions {
	return &MatchAcrossTransactions{Window: 30 * Day}
}

func (m *MatchAcrossTransactions) FormLikeKindExchanges(txs []Transaction, w LogWriter) ([]Transaction, error) {
	w.WriteLine("Identifying like kind exchanges using match-across-transactions algorithm:")
	working := slices.Clone(txs)
	removed := make(map[int]bool)

	for _, s := range chronological(working, Sale) {
		sale := working[s]
		candidates := candidatesWhere(working, func(tx Transaction) bool {
			return tx.Type == sale.Type.Opposite() &&
				tx.DateTime.After(sale.DateTime.Add(-m.Window)) &&
				tx.DateTime.Before(sale.DateTime.Add(m.Window)) &&
				tx.AssetType == sale.AssetType &&
				tx.ItemType == sale.ItemType &&
				tx.Vault != sale.Vault
		})
		if len(candidates) == 0 {
			continue
		}

		source := TransferSource{Service: sale.Service, Account: sale.Account, Vault: sale.Vault}
		remaining := sale.AmountPaid
		for _, p := range candidates {
			if !remaining.IsPositive() {
				break
			}
			purchase := working[p]
			w.WriteLine(matchLine(sale, purchase))
			measure, err := purchase.MeasureIn(sale.Unit)
			if err != nil {
				return nil, fmt.Errorf("matching sale %s: %w", sale.ID, err)
			}
			leftover := measure.Sub(remaining)
			if leftover.IsNegative() {
				working[p] = purchase.AsTransfer(source)
				remaining = remaining.Sub(measure)
				continue
			}
			transfer := purchase.AsTransfer(source)
			if leftover.IsPositive() {
				rest, err := splitPurchase(purchase, leftover, sale.Unit, working)
				if err != nil {
					return nil, fmt.Errorf("matching sale %s: %w", sale.ID, err)
				}
				working = append(working, rest)
				transfer.AmountReceived = purchase.AmountReceived.Sub(rest.AmountReceived)
				transfer.AmountPaid = purchase.AmountPaid.Sub(rest.AmountPaid)
			}
			working[p] = transfer
			remaining = Quantity{}
		}

		if remaining.IsPositive() {
			working[s] = reduceSale(sale, remaining)
		} else {
			removed[s] = true
		}
	}
	w.WriteLine("Finished identifying like kind exchanges.")
	return without(working, removed), nil
}

// MatchSimilarTransactions matches each sale with a single purchase of the
// same item within Window whose amount is at least Tolerance of the sale,
// preferring purchases made after the sale.
type MatchSimilarTransactions struct {
	Window    time.Duration
	Tolerance Quantity
}

func NewMatchSimilarTransactions() *MatchSimilarTransactions {
	return &MatchSimilarTransactions{Window: 30 * Day, Tolerance: Q(decimal.RequireFromString("0.9"))}
}

func (m *MatchSimilarTransactions) FormLikeKindExchanges(txs []Transaction, w LogWriter) ([]Transaction, error) {
	w.WriteLine("Identifying like kind exchanges using similar transactions algorithm:")
	working := slices.Clone(txs)
	removed := make(map[int]bool)

	for _, s := range chronological(working, Sale) {
		sale := working[s]
		p, ok, err := m.find(working, sale)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		purchase := working[p]
		w.WriteLine(matchLine(sale, purchase))

		received, err := purchase.MeasureIn(sale.Unit)
		if err != nil {
			return nil, fmt.Errorf("matching sale %s: %w", sale.ID, err)
		}
		transfer := purchase.AsTransfer(TransferSource{Service: sale.Service, Account: sale.Account, Vault: sale.Vault})
		switch diff := sale.AmountPaid.Sub(received); {
		case diff.IsPositive():
			working = append(working, Transaction{
				Service:    sale.Service,
				Account:    sale.Account,
				Vault:      sale.Vault,
				DateTime:   sale.DateTime,
				ID:         uniqueID(sale.ID, working),
				Type:       FeeInAsset,
				AmountPaid: diff,
				Unit:       sale.Unit,
				Currency:   sale.Currency,
				AssetType:  sale.AssetType,
				ItemType:   sale.ItemType,
				Memo:       "Transfer fee (in asset) from like-kind exchange " + sale.ID,
				SpotPrice:  sale.SpotPrice,
			})
		case diff.IsNegative():
			rest, err := splitPurchase(purchase, diff.Neg(), sale.Unit, working)
			if err != nil {
				return nil, fmt.Errorf("matching sale %s: %w", sale.ID, err)
			}
			working = append(working, rest)
			transfer.AmountReceived = purchase.AmountReceived.Sub(rest.AmountReceived)
			transfer.AmountPaid = purchase.AmountPaid.Sub(rest.AmountPaid)
		}
		working[p] = transfer
		removed[s] = true
	}
	w.WriteLine("Finished identifying like kind exchanges.")
	return without(working, removed), nil
}

// find returns the purchase to fold sale into: the earliest qualifying one
// after the sale, else the earliest one before it.
func (m *MatchSimilarTransactions) find(txs []Transaction, sale Transaction) (int, bool, error) {
	threshold := sale.AmountPaid.Mul(m.Tolerance)
	var failure error
	qualifies := func(tx Transaction) bool {
		if tx.Type != sale.Type.Opposite() || tx.AssetType != sale.AssetType || tx.ItemType != sale.ItemType {
			return false
		}
		received, err := tx.MeasureIn(sale.Unit)
		if err != nil {
			failure = err
			return false
		}
		return received.GreaterThanOrEqual(threshold)
	}
	later := candidatesWhere(txs, func(tx Transaction) bool {
		return !tx.DateTime.Before(sale.DateTime) && !tx.DateTime.After(sale.DateTime.Add(m.Window)) && qualifies(tx)
	})
	if failure != nil {
		return 0, false, fmt.Errorf("matching sale %s: %w", sale.ID, failure)
	}
	if len(later) > 0 {
		return later[0], true, nil
	}
	earlier := candidatesWhere(txs, func(tx Transaction) bool {
		return !tx.DateTime.Before(sale.DateTime.Add(-m.Window)) && !tx.DateTime.After(sale.DateTime) && qualifies(tx)
	})
	if failure != nil {
		return 0, false, fmt.Errorf("matching sale %s: %w", sale.ID, failure)
	}
	if len(earlier) > 0 {
		return earlier[0], true, nil
	}
	return 0, false, nil
}

// chronological returns the indexes of transactions of type t, by date.
func chronological(txs []Transaction, t TransactionType) []int {
	return candidatesWhere(txs, func(tx Transaction) bool { return tx.Type == t })
}

// candidatesWhere returns the indexes of transactions matching keep, by date.
func candidatesWhere(txs []Transaction, keep func(Transaction) bool) []int {
	var idx []int
	for i, tx := range txs {
		if keep(tx) {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int { return txs[a].DateTime.Compare(txs[b].DateTime) })
	return idx
}

// splitPurchase returns a new purchase for the part of p not exchanged:
// extra, expressed in unit, with its share of the amount paid.
func splitPurchase(p Transaction, extra Quantity, unit Unit, txs []Transaction) (Transaction, error) {
	rest, err := ConvertUnit(extra, unit, p.Unit)
	if err != nil {
		return Transaction{}, err
	}
	split := p
	split.ID = uniqueID(p.ID, txs)
	split.AmountReceived = rest
	split.AmountPaid = p.AmountPaid.Mul(rest).Div(p.AmountReceived)
	split.Memo = "Unmatched remainder of " + p.ID
	return split, nil
}

// reduceSale keeps the unmatched part of sale, with its share of the proceeds.
func reduceSale(sale Transaction, remaining Quantity) Transaction {
	reduced := sale
	reduced.AmountReceived = sale.AmountReceived.Mul(remaining).Div(sale.AmountPaid)
	reduced.AmountPaid = remaining
	return reduced
}

func without(txs []Transaction, removed map[int]bool) []Transaction {
	kept := make([]Transaction, 0, len(txs)-len(removed))
	for i, tx := range txs {
		if !removed[i] {
			kept = append(kept, tx)
		}
	}
	return kept
}

func matchLine(sale, purchase Transaction) string {
	return fmt.Sprintf("Matched %s %s from %s on %s of %s %s (transaction ID %s) with %s to %s on %s of %s %s (transaction ID %s)",
		sale.AssetType, sale.Type, sale.Service, sale.DateTime.Format(time.DateOnly), sale.Measure(), sale.Unit, sale.ID,
		purchase.Type, purchase.Service, purchase.DateTime.Format(time.DateOnly), purchase.Measure(), purchase.Unit, purchase.ID)
}
