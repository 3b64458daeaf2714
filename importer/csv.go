package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/assettrack"
)

// GenericCSV reads the generic export layout, one transaction per row:
//
//	0 date, 1 vault, 2 id, 3 type (buy, sell, send, receive, feeinasset,
//	feeincurrency), 4 currency amount, 5 currency, 6 quantity, 7 unit
//	(g, oz, troyoz, cryptocoin), 8 asset, 9 unused, 10 memo, 11 item type.
//
// Memo and item type are optional; the item type defaults to "Generic".
type GenericCSV struct {
	HeaderLines int
	Comma       rune
}

const genericColumns = 9

func (g GenericCSV) Import(r io.Reader, origin Origin) ([]assettrack.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if g.Comma != 0 {
		reader.Comma = g.Comma
	}

	var txs []assettrack.Transaction
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", assettrack.ErrMalformedInput, err)
		}
		if row <= g.HeaderLines || blank(fields) || strings.Contains(strings.Join(fields, ""), "Number of transactions =") {
			continue
		}
		if len(fields) < genericColumns {
			return nil, fmt.Errorf("%w: row %d has %d columns, want at least %d", assettrack.ErrMalformedInput, row, len(fields), genericColumns)
		}
		rec := record{
			Date:     fields[0],
			Vault:    fields[1],
			ID:       fields[2],
			Type:     fields[3],
			Amount:   fields[4],
			Currency: fields[5],
			Quantity: fields[6],
			Unit:     fields[7],
			Asset:    fields[8],
			Memo:     column(fields, 10),
			Item:     column(fields, 11),
		}
		tx, err := rec.transaction(origin)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func column(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" && f != `""` {
			return false
		}
	}
	return true
}
