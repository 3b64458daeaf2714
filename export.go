package assettrack

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"
)

// Flat exports are tab separated tables with a header row, meant for
// spreadsheets.

func newTSVWriter(w io.Writer) *csv.Writer {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	return tw
}

func flush(tw *csv.Writer) error {
	tw.Flush()
	return tw.Error()
}

// WriteTransactions writes txs ordered by date.
func WriteTransactions(w io.Writer, txs []Transaction) error {
	tw := newTSVWriter(w)
	tw.Write([]string{"Date", "Service", "Type", "Asset", "Measure", "Unit", "ItemType", "Account",
		"AmountPaid", "AmountReceived", "Currency", "Vault", "TransactionId", "SpotPrice", "Memo"})
	for _, tx := range sortedByDate(txs) {
		spot := ""
		if tx.SpotPrice != nil {
			spot = tx.SpotPrice.String()
		}
		tw.Write([]string{
			tx.DateTime.Format(time.DateTime), tx.Service, tx.Type.String(), tx.AssetType.String(),
			tx.Measure().String(), tx.Unit.String(), tx.ItemType, tx.Account,
			tx.AmountPaid.String(), tx.AmountReceived.String(), tx.Currency, tx.Vault, tx.ID, spot, tx.Memo,
		})
	}
	return flush(tw)
}

// WriteOpenLots writes the lots not depleted, oldest purchase first.
func WriteOpenLots(w io.Writer, lots []*Lot) error {
	tw := newTSVWriter(w)
	tw.Write([]string{"Date", "LotID", "Asset", "OriginalMeasure", "CurrentMeasure", "Unit", "ItemType",
		"Account", "Service", "Vault", "OriginalBasis", "CurrentBasis", "Currency"})
	for _, l := range openLots(lots) {
		tw.Write([]string{
			l.PurchaseDate.Format(time.DateOnly), l.ID, l.AssetType.String(), l.OriginalAmount.String(),
			l.Current().String(), l.Unit.String(), l.ItemType, l.Account(), l.Service(), l.Vault(),
			l.OriginalBasis.Value.Fixed(2), l.AdjustedBasis().Value.Fixed(2), l.AdjustedBasis().Value.Currency(),
		})
	}
	return flush(tw)
}

func openLots(lots []*Lot) []*Lot {
	var open []*Lot
	for _, l := range lots {
		if !l.IsDepleted() {
			open = append(open, l)
		}
	}
	slices.SortStableFunc(open, func(a, b *Lot) int { return a.PurchaseDate.Compare(b.PurchaseDate) })
	return open
}

// Holding is what is held of one item, whatever the custodian.
type Holding struct {
	AssetType AssetType
	ItemType  string
	Measure   Quantity
	Unit      Unit
	Basis     Money
}

// Holdings sums the open lots by asset and item type. Each holding is
// expressed in the unit of its oldest lot.
func Holdings(lots []*Lot) ([]Holding, error) {
	open := openLots(lots)
	slices.SortStableFunc(open, func(a, b *Lot) int {
		return cmp.Or(cmp.Compare(a.AssetType, b.AssetType), cmp.Compare(a.ItemType, b.ItemType))
	})
	var holdings []Holding
	for _, l := range open {
		if n := len(holdings); n > 0 && holdings[n-1].AssetType == l.AssetType && holdings[n-1].ItemType == l.ItemType {
			h := &holdings[n-1]
			m, err := l.CurrentAmount(h.Unit)
			if err != nil {
				return nil, fmt.Errorf("holding %s (%s): %w", h.AssetType, h.ItemType, err)
			}
			if h.Basis, err = h.Basis.Add(l.AdjustedBasis().Value); err != nil {
				return nil, fmt.Errorf("holding %s (%s): %w", h.AssetType, h.ItemType, err)
			}
			h.Measure = h.Measure.Add(m)
			continue
		}
		holdings = append(holdings, Holding{
			AssetType: l.AssetType,
			ItemType:  l.ItemType,
			Measure:   l.Current(),
			Unit:      l.Unit,
			Basis:     l.AdjustedBasis().Value,
		})
	}
	return holdings, nil
}

// WriteHoldings writes one row per holding.
func WriteHoldings(w io.Writer, holdings []Holding) error {
	tw := newTSVWriter(w)
	tw.Write([]string{"Asset", "ItemType", "CurrentMeasure", "Unit", "CurrentBasis", "Currency"})
	for _, h := range holdings {
		tw.Write([]string{h.AssetType.String(), h.ItemType, h.Measure.String(), h.Unit.String(), h.Basis.Fixed(2), h.Basis.Currency()})
	}
	return flush(tw)
}

// SaleYears returns the distinct years with sales, ascending.
func SaleYears(sales []TaxableSale) []int {
	var years []int
	for _, s := range sales {
		years = append(years, s.SaleDate().Year())
	}
	slices.Sort(years)
	return slices.Compact(years)
}

// SalesIn returns the sales of year, ordered by service, item type and
// purchase date.
func SalesIn(sales []TaxableSale, year int) []TaxableSale {
	var selected []TaxableSale
	for _, s := range sales {
		if s.SaleDate().Year() == year {
			selected = append(selected, s)
		}
	}
	slices.SortStableFunc(selected, func(a, b TaxableSale) int {
		return cmp.Or(
			cmp.Compare(a.Service(), b.Service()),
			cmp.Compare(a.ItemType(), b.ItemType()),
			a.PurchaseDate().Compare(b.PurchaseDate()),
		)
	})
	return selected
}

// WriteGains writes the capital gains realized during year.
func WriteGains(w io.Writer, sales []TaxableSale, year int) error {
	tw := newTSVWriter(w)
	tw.Write([]string{"Service", "LotID", "Asset", "ItemType", "BoughtDate", "SoldDate", "AdjustedBasis", "SalePrice", "NetGain"})
	for _, s := range SalesIn(sales, year) {
		gain, err := s.NetGain()
		if err != nil {
			return fmt.Errorf("gain on lot %s: %w", s.LotID(), err)
		}
		tw.Write([]string{
			s.Service(), s.LotID(), s.AssetType().String(), s.ItemType(),
			s.PurchaseDate().Format(time.DateOnly), s.SaleDate().Format(time.DateOnly),
			s.AdjustedBasis().Value.Fixed(2), s.Proceeds().Fixed(2), gain.Fixed(2),
		})
	}
	return flush(tw)
}

// GainsFileName is the name of the gains export of year.
func GainsFileName(year int) string { return "tm-gains-" + strconv.Itoa(year) + ".txt" }

// Export file names.
const (
	TransactionsFileName = "tm-transactions.txt"
	LotsFileName         = "tm-lots.txt"
	HoldingsFileName     = "tm-holdings.txt"
	UnmatchedFileName    = "tm-no-match-transfers.txt"
)
