package assettrack

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// jsonTransaction is the canonical JSON form of a Transaction.
type jsonTransaction struct {
	Type          TransactionType `json:"type"`
	Date          time.Time       `json:"date"`
	ID            string          `json:"id"`
	Service       string          `json:"service"`
	Account       string          `json:"account"`
	Vault         string          `json:"vault"`
	Asset         string          `json:"asset"`
	Item          string          `json:"item"`
	Paid          Quantity        `json:"paid"`
	Received      Quantity        `json:"received"`
	Unit          string          `json:"unit"`
	Currency      string          `json:"currency"`
	Spot          *Quantity       `json:"spot"`
	Memo          string          `json:"memo"`
	SourceService string          `json:"sourceService"`
	SourceAccount string          `json:"sourceAccount"`
	SourceVault   string          `json:"sourceVault"`
}

// DecodeTransactions reads one transaction per line of JSON. Blank lines are
// skipped. Every decoded transaction is validated.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var identifier struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("%w: line %d: could not identify transaction type: %w", ErrMalformedInput, line, err)
		}
		typ, err := ParseType(identifier.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var temp jsonTransaction
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedInput, line, err)
		}
		unit, err := ParseUnit(temp.Unit)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		asset, err := ParseAssetType(temp.Asset)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tx := Transaction{
			Service:        temp.Service,
			Account:        temp.Account,
			Vault:          temp.Vault,
			DateTime:       temp.Date,
			ID:             temp.ID,
			Type:           typ,
			AmountPaid:     temp.Paid,
			AmountReceived: temp.Received,
			Unit:           unit,
			Currency:       temp.Currency,
			AssetType:      asset,
			ItemType:       temp.Item,
			Memo:           temp.Memo,
			SpotPrice:      temp.Spot,
			Source:         TransferSource{Service: temp.SourceService, Account: temp.SourceAccount, Vault: temp.SourceVault},
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return txs, nil
}

// MarshalJSON writes the canonical form with a stable key order, leaving out
// empty optional fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Type)
	w.Append("date", t.DateTime.Format(time.RFC3339))
	w.Append("id", t.ID)
	w.Append("service", t.Service)
	w.Optional("account", t.Account)
	w.Optional("vault", t.Vault)
	w.Append("asset", t.AssetType)
	w.Optional("item", t.ItemType)
	w.Append("paid", t.AmountPaid)
	w.Append("received", t.AmountReceived)
	w.Append("unit", t.Unit)
	w.Optional("currency", t.Currency)
	w.Optional("spot", t.SpotPrice)
	w.Optional("memo", t.Memo)
	w.Optional("sourceService", t.Source.Service)
	w.Optional("sourceAccount", t.Source.Account)
	w.Optional("sourceVault", t.Source.Vault)
	return w.MarshalJSON()
}

// EncodeTransaction writes tx as one line of JSON.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	b, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// EncodeTransactions writes txs as JSON lines, ordered by date. Transactions
// on the same date keep their relative order.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range sortedByDate(txs) {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
