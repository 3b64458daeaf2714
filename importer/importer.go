// Package importer reads custodian exports into transactions.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/assettrack"
	"github.com/shopspring/decimal"
)

// Origin is the custodian and account an export file belongs to.
type Origin struct {
	Service string
	Account string
}

// OriginFromFileName reads the origin from a file named
// "<Service>-<account>-anything".
func OriginFromFileName(path string) (Origin, error) {
	parts := strings.SplitN(filepath.Base(path), "-", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
		return Origin{}, fmt.Errorf("%w: cannot read service and account from file name %q, want Service-account-...", assettrack.ErrMalformedInput, path)
	}
	return Origin{Service: parts[0], Account: parts[1]}, nil
}

// Importer turns one export into transactions.
type Importer interface {
	Import(r io.Reader, origin Origin) ([]assettrack.Transaction, error)
}

// ImportFile reads path with the importer matching its extension:
//
//   - .jsonl holds canonical transactions, one per line;
//   - .csv and .txt hold generic records, comma or tab separated;
//   - .json is read through mapping, which is then required.
func ImportFile(path string, mapping *Mapping) ([]assettrack.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jsonl" {
		txs, err := assettrack.DecodeTransactions(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return txs, nil
	}

	origin, err := OriginFromFileName(path)
	if err != nil {
		return nil, err
	}
	var txs []assettrack.Transaction
	switch ext {
	case ".csv":
		txs, err = GenericCSV{HeaderLines: 1, Comma: ','}.Import(f, origin)
	case ".txt":
		txs, err = GenericCSV{HeaderLines: 1, Comma: '\t'}.Import(f, origin)
	case ".json":
		if mapping == nil {
			return nil, fmt.Errorf("reading %s: a mapping is required for JSON exports", path)
		}
		txs, err = mapping.Import(f, origin)
	default:
		return nil, fmt.Errorf("reading %s: unrecognized file extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return txs, nil
}

// record holds the raw fields of one custodian line, before normalization.
type record struct {
	Date     string
	Vault    string
	ID       string
	Type     string
	Amount   string // currency amount, may carry a "$"
	Currency string
	Quantity string
	Unit     string
	Asset    string
	Memo     string
	Item     string
}

// transaction normalizes r into a transaction from origin.
func (r record) transaction(origin Origin) (assettrack.Transaction, error) {
	var errs []error
	on, err := parseDate(r.Date)
	if err != nil {
		errs = append(errs, err)
	}
	typ, err := parseType(r.Type)
	if err != nil {
		errs = append(errs, err)
	}
	amount, err := parseDecimal(strings.NewReplacer("$", "", ",", "").Replace(r.Amount))
	if err != nil {
		errs = append(errs, fmt.Errorf("amount: %w", err))
	}
	quantity, err := parseDecimal(r.Quantity)
	if err != nil {
		errs = append(errs, fmt.Errorf("quantity: %w", err))
	}
	unit, err := assettrack.ParseUnit(r.Unit)
	if err != nil {
		errs = append(errs, err)
	}
	asset, err := assettrack.ParseAssetType(r.Asset)
	if err != nil {
		errs = append(errs, err)
	}
	currency := ""
	if strings.TrimSpace(r.Currency) != "" {
		if currency, err = assettrack.ParseCurrency(r.Currency); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return assettrack.Transaction{}, fmt.Errorf("%w: record %q: %w", assettrack.ErrMalformedInput, r.ID, errors.Join(errs...))
	}

	// direction comes from the type, custodians sign amounts inconsistently
	amount, quantity = amount.Abs(), quantity.Abs()

	tx := assettrack.Transaction{
		Service:   origin.Service,
		Account:   origin.Account,
		Vault:     r.Vault,
		DateTime:  on,
		ID:        r.ID,
		Type:      typ,
		Unit:      unit,
		Currency:  currency,
		AssetType: asset,
		ItemType:  r.Item,
		Memo:      r.Memo,
	}
	if tx.ItemType == "" {
		tx.ItemType = "Generic"
	}
	switch typ {
	case assettrack.Purchase, assettrack.PurchaseViaExchange:
		tx.AmountPaid, tx.AmountReceived = assettrack.Q(amount), assettrack.Q(quantity)
	case assettrack.Sale, assettrack.SaleViaExchange:
		tx.AmountPaid, tx.AmountReceived = assettrack.Q(quantity), assettrack.Q(amount)
	case assettrack.TransferIn:
		tx.AmountReceived = assettrack.Q(quantity)
	case assettrack.TransferOut, assettrack.FeeInAsset:
		tx.AmountPaid = assettrack.Q(quantity)
	case assettrack.FeeInCurrency:
		tx.AmountPaid = assettrack.Q(amount)
	}
	if amount.IsPositive() && quantity.IsPositive() {
		spot := assettrack.Q(amount.Div(quantity))
		tx.SpotPrice = &spot
	}
	return tx, nil
}

// parseType accepts the generic verbs and the canonical type names.
func parseType(s string) (assettrack.TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return assettrack.Purchase, nil
	case "sell":
		return assettrack.Sale, nil
	case "send":
		return assettrack.TransferOut, nil
	case "receive":
		return assettrack.TransferIn, nil
	case "feeinasset":
		return assettrack.FeeInAsset, nil
	case "feeincurrency":
		return assettrack.FeeInCurrency, nil
	default:
		return assettrack.ParseType(strings.ToLower(strings.TrimSpace(s)))
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

var dateLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02 15:04",
	time.DateOnly,
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006",
}

// parseDate reads the date layouts custodians use. Dates without a zone are
// UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
