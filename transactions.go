package assettrack

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// TransactionType is a typed string for identifying transactions.
type TransactionType string

// Transaction types. The set is closed: ParseType rejects anything else and
// every dispatch over it is exhaustive.
const (
	Purchase            TransactionType = "purchase"
	PurchaseViaExchange TransactionType = "purchase-via-exchange"
	Sale                TransactionType = "sale"
	SaleViaExchange     TransactionType = "sale-via-exchange"
	TransferIn          TransactionType = "transfer-in"
	TransferOut         TransactionType = "transfer-out"
	FeeInAsset          TransactionType = "fee-in-asset"
	FeeInCurrency       TransactionType = "fee-in-currency"
)

var transactionTypes = []TransactionType{
	Purchase, PurchaseViaExchange, Sale, SaleViaExchange,
	TransferIn, TransferOut, FeeInAsset, FeeInCurrency,
}

func (t TransactionType) String() string { return string(t) }

// ParseType parses a canonical transaction type.
func ParseType(s string) (TransactionType, error) {
	for _, t := range transactionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown transaction type %q", ErrMalformedInput, s)
}

// IsPurchase reports purchase and purchase-via-exchange.
func (t TransactionType) IsPurchase() bool { return t == Purchase || t == PurchaseViaExchange }

// IsSale reports sale and sale-via-exchange.
func (t TransactionType) IsSale() bool { return t == Sale || t == SaleViaExchange }

// Opposite returns the other side of a trade, or "" when t has none.
func (t TransactionType) Opposite() TransactionType {
	switch t {
	case Purchase:
		return Sale
	case Sale:
		return Purchase
	case PurchaseViaExchange:
		return SaleViaExchange
	case SaleViaExchange:
		return PurchaseViaExchange
	default:
		return ""
	}
}

// TransferSource locates where a transferred quantity comes from.
type TransferSource struct {
	Service string
	Account string
	Vault   string
}

// IsZero reports whether no source is recorded.
func (s TransferSource) IsZero() bool { return s == TransferSource{} }

// Transaction is one economic event reported by a custodian, normalized.
//
// Transactions are handled as values: pipeline stages return modified copies
// and never alter a record they received.
type Transaction struct {
	Service        string
	Account        string
	Vault          string
	DateTime       time.Time
	ID             string
	Type           TransactionType
	AmountPaid     Quantity // asset for sales, transfers out and fees in asset; currency otherwise
	AmountReceived Quantity // asset for purchases and transfers in; currency for sales
	Unit           Unit
	Currency       string
	AssetType      AssetType
	ItemType       string
	Memo           string
	SpotPrice      *Quantity
	Source         TransferSource // only set on reconciled transfers in
}

// Measure returns the asset quantity moved by the transaction.
func (t Transaction) Measure() Quantity {
	switch t.Type {
	case Purchase, PurchaseViaExchange, TransferIn:
		return t.AmountReceived
	case Sale, SaleViaExchange, TransferOut, FeeInAsset:
		return t.AmountPaid
	default:
		return Quantity{}
	}
}

// WithMeasure returns a copy of t moving q instead.
func (t Transaction) WithMeasure(q Quantity) Transaction {
	switch t.Type {
	case Purchase, PurchaseViaExchange, TransferIn:
		t.AmountReceived = q
	case Sale, SaleViaExchange, TransferOut, FeeInAsset:
		t.AmountPaid = q
	}
	return t
}

// MeasureIn returns Measure expressed in unit.
func (t Transaction) MeasureIn(unit Unit) (Quantity, error) {
	return ConvertUnit(t.Measure(), t.Unit, unit)
}

// AsTransfer returns a copy of t retyped as a transfer in from source.
func (t Transaction) AsTransfer(source TransferSource) Transaction {
	t.Type = TransferIn
	t.Source = source
	return t
}

// Validate checks the fields the engine relies on.
func (t Transaction) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("transaction id is missing"))
	}
	if t.DateTime.IsZero() {
		errs = append(errs, errors.New("date is missing"))
	}
	if _, err := ParseType(string(t.Type)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseAssetType(string(t.AssetType)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseUnit(string(t.Unit)); err != nil {
		errs = append(errs, err)
	}
	if t.AmountPaid.IsNegative() || t.AmountReceived.IsNegative() {
		errs = append(errs, errors.New("amounts cannot be negative"))
	}
	switch t.Type {
	case Purchase, PurchaseViaExchange, TransferIn, Sale, SaleViaExchange, TransferOut, FeeInAsset:
		if !t.Measure().IsPositive() {
			errs = append(errs, fmt.Errorf("%s quantity must be positive, got %s", t.Type, t.Measure()))
		}
	case FeeInCurrency:
		if !t.AmountPaid.IsPositive() {
			errs = append(errs, fmt.Errorf("fee amount must be positive, got %s", t.AmountPaid))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: transaction %q: %w", ErrMalformedInput, t.ID, errors.Join(errs...))
	}
	return nil
}

// paid returns the amount paid as money, for purchases and currency fees.
func (t Transaction) paid() Money { return M(t.AmountPaid.value, t.Currency) }

// received returns the amount received as money, for sales.
func (t Transaction) received() Money { return M(t.AmountReceived.value, t.Currency) }

// uniqueID derives an id from base, not used in any of lists, by appending -1, -2, ...
func uniqueID(base string, lists ...[]Transaction) string {
	used := make(map[string]bool)
	for _, txs := range lists {
		for _, tx := range txs {
			used[tx.ID] = true
		}
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if !used[id] {
			return id
		}
	}
}

// sortedByDate returns a copy of txs in date order. Transactions at the same
// time keep their relative order.
func sortedByDate(txs []Transaction) []Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.DateTime.Compare(b.DateTime) })
	return sorted
}
