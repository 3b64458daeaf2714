package assettrack

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeTransactions(t *testing.T) {
	jsonlStream := `
{"type":"purchase","date":"2024-01-02T10:00:00Z","id":"P1","service":"Dealer","account":"A1","vault":"V1","asset":"gold","item":"Generic","paid":100,"received":10,"unit":"g","currency":"USD"}

{"type":"transfer-in","date":"2024-03-01T12:00:00Z","id":"R1","service":"Vaultco","account":"B2","vault":"V2","asset":"Gold","item":"Generic","received":4,"unit":"gram","sourceService":"Dealer","sourceAccount":"A1","sourceVault":"V1"}
`
	got, err := DecodeTransactions(strings.NewReader(jsonlStream))
	if err != nil {
		t.Fatalf("DecodeTransactions() returned an unexpected error: %v", err)
	}
	want := []Transaction{
		func() Transaction { tx := buy("P1", "2024-01-02 10:00", 10, 100); return tx }(),
		func() Transaction {
			tx := in(receive("R1", "2024-03-01 12:00", 4), "Vaultco", "B2", "V2")
			tx.Currency = ""
			return tx.AsTransfer(TransferSource{Service: "Dealer", Account: "A1", Vault: "V1"})
		}(),
	}
	if diff := cmp.Diff(want, got, compareValues); diff != "" {
		t.Errorf("DecodeTransactions() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTransactions_Errors(t *testing.T) {
	testCases := map[string]string{
		"unknown type":    `{"type":"dividend","date":"2024-01-02T10:00:00Z","id":"X","asset":"gold","unit":"g","paid":1,"received":1}`,
		"unknown unit":    `{"type":"purchase","date":"2024-01-02T10:00:00Z","id":"X","asset":"gold","unit":"kg","paid":1,"received":1}`,
		"unknown asset":   `{"type":"purchase","date":"2024-01-02T10:00:00Z","id":"X","asset":"copper","unit":"g","paid":1,"received":1}`,
		"missing id":      `{"type":"purchase","date":"2024-01-02T10:00:00Z","asset":"gold","unit":"g","paid":1,"received":1}`,
		"nothing bought":  `{"type":"purchase","date":"2024-01-02T10:00:00Z","id":"X","asset":"gold","unit":"g","paid":1}`,
		"not json":        `purchase,2024-01-02`,
		"bad number type": `{"type":"purchase","date":"2024-01-02T10:00:00Z","id":"X","asset":"gold","unit":"g","paid":"one","received":1}`,
	}
	for name, line := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeTransactions(strings.NewReader(line)); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("DecodeTransactions() error = %v, want %v", err, ErrMalformedInput)
			}
		})
	}
}

func TestEncodeTransactions(t *testing.T) {
	spot := Q(10)
	p := buy("P1", "2024-01-02 10:00", 10, 100)
	p.SpotPrice = &spot
	txs := []Transaction{
		in(receive("R1", "2024-03-01 12:00", 4), "Vaultco", "B2", "V2").AsTransfer(TransferSource{Service: "Dealer", Account: "A1", Vault: "V1"}),
		p,
	}

	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		t.Fatalf("EncodeTransactions() returned an unexpected error: %v", err)
	}
	want := `{"type":"purchase","date":"2024-01-02T10:00:00Z","id":"P1","service":"Dealer","account":"A1","vault":"V1","asset":"gold","item":"Generic","paid":100,"received":10,"unit":"gram","currency":"USD","spot":10}
{"type":"transfer-in","date":"2024-03-01T12:00:00Z","id":"R1","service":"Vaultco","account":"B2","vault":"V2","asset":"gold","item":"Generic","paid":0,"received":4,"unit":"gram","currency":"USD","sourceService":"Dealer","sourceAccount":"A1","sourceVault":"V1"}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeTransactions() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	decoded, err := DecodeTransactions(&buf)
	if err != nil {
		t.Fatalf("DecodeTransactions() returned an unexpected error: %v", err)
	}
	if diff := cmp.Diff(sortedByDate(txs), decoded, compareValues); diff != "" {
		t.Errorf("decoded transactions mismatch (-want +got):\n%s", diff)
	}
}
