package assettrack

import (
	"time"

	"github.com/google/go-cmp/cmp"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// compareValues lets cmp compare the decimal based types by value.
var compareValues = cmp.Options{
	cmp.Comparer(func(a, b Quantity) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Money) bool { return a.Equal(b) }),
}

// at parses "2006-01-02" or "2006-01-02 15:04" in UTC.
func at(s string) time.Time {
	layout := time.DateOnly
	if len(s) > len(time.DateOnly) {
		layout = "2006-01-02 15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// gold returns a transaction on generic gold held in grams by Dealer, account
// A1, vault V1.
func gold(typ TransactionType, id, when string, paid, received float64) Transaction {
	return Transaction{
		Service:        "Dealer",
		Account:        "A1",
		Vault:          "V1",
		DateTime:       at(when),
		ID:             id,
		Type:           typ,
		AmountPaid:     Q(paid),
		AmountReceived: Q(received),
		Unit:           Gram,
		Currency:       "USD",
		AssetType:      Gold,
		ItemType:       "Generic",
	}
}

func buy(id, when string, grams, price float64) Transaction {
	return gold(Purchase, id, when, price, grams)
}

func sell(id, when string, grams, proceeds float64) Transaction {
	return gold(Sale, id, when, grams, proceeds)
}

func send(id, when string, grams float64) Transaction {
	return gold(TransferOut, id, when, grams, 0)
}

func receive(id, when string, grams float64) Transaction {
	return gold(TransferIn, id, when, 0, grams)
}

func feeInAsset(id, when string, grams float64) Transaction {
	return gold(FeeInAsset, id, when, grams, 0)
}

func feeInCurrency(id, when string, amount float64) Transaction {
	return gold(FeeInCurrency, id, when, amount, 0)
}

// in returns tx moved to another service, account and vault.
func in(tx Transaction, service, account, vault string) Transaction {
	tx.Service, tx.Account, tx.Vault = service, account, vault
	return tx
}

// collect is a LogWriter keeping every line.
type collect []string

func (c *collect) WriteLine(line string) { *c = append(*c, line) }
