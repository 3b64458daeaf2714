package assettrack

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInventory_SaleFromSingleLot(t *testing.T) {
	inv := NewInventory()
	err := inv.Apply([]Transaction{
		buy("P1", "2024-01-02", 10, 100),
		sell("S1", "2024-02-01", 4, 50),
	})
	if err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}

	sales := inv.Sales()
	if len(sales) != 1 {
		t.Fatalf("Sales() returned %d sales, want 1", len(sales))
	}
	if got, want := sales[0].AdjustedBasis().Value, USD(40); !got.Equal(want) {
		t.Errorf("sale basis = %v, want %v", got, want)
	}
	if got, want := sales[0].Proceeds(), USD(50); !got.Equal(want) {
		t.Errorf("sale proceeds = %v, want %v", got, want)
	}
	gain, err := sales[0].NetGain()
	if err != nil {
		t.Fatalf("NetGain() returned an unexpected error: %v", err)
	}
	if want := USD(10); !gain.Equal(want) {
		t.Errorf("NetGain() = %v, want %v", gain, want)
	}

	lot, ok := inv.Lot("P1")
	if !ok {
		t.Fatalf("Lot(%q) not found", "P1")
	}
	if got, want := lot.Current(), Q(6); !got.Equal(want) {
		t.Errorf("lot current = %v, want %v", got, want)
	}
	if got, want := lot.AdjustedBasis().Value, USD(60); !got.Equal(want) {
		t.Errorf("lot adjusted basis = %v, want %v", got, want)
	}
	if _, closed := lot.CloseDate(); closed {
		t.Errorf("lot is closed, want open")
	}
}

func TestInventory_SaleAcrossLots(t *testing.T) {
	inv := NewInventory()
	err := inv.Apply([]Transaction{
		buy("A", "2024-01-01", 5, 50),
		buy("B", "2024-01-02", 5, 60),
		sell("S1", "2024-02-01", 7, 140),
	})
	if err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}

	type slice struct {
		LotID    string
		Measure  Quantity
		Basis    Money
		Proceeds Money
	}
	var got []slice
	for _, s := range inv.Sales() {
		got = append(got, slice{s.LotID(), s.Measure(), s.AdjustedBasis().Value, s.Proceeds()})
	}
	want := []slice{
		{"A", Q(5), USD(50), USD(100)},
		{"B", Q(2), USD(24), USD(40)},
	}
	if diff := cmp.Diff(want, got, compareValues); diff != "" {
		t.Errorf("Sales() mismatch (-want +got):\n%s", diff)
	}

	a, _ := inv.Lot("A")
	if closedOn, closed := a.CloseDate(); !closed || !closedOn.Equal(at("2024-02-01")) {
		t.Errorf("lot A close date = %v (closed %v), want 2024-02-01", closedOn, closed)
	}
	b, _ := inv.Lot("B")
	if got, want := b.Current(), Q(3); !got.Equal(want) {
		t.Errorf("lot B current = %v, want %v", got, want)
	}
	if open := inv.OpenLots(); len(open) != 1 || open[0].ID != "B" {
		t.Errorf("OpenLots() = %v, want only lot B", open)
	}
}

func TestInventory_FIFOSlicesSumToSale(t *testing.T) {
	txs := []Transaction{
		buy("A", "2024-01-01", 1.5, 30),
		buy("B", "2024-01-02", 2.25, 50),
		buy("C", "2024-01-03", 4, 90),
		sell("S1", "2024-02-01", 3, 80),
		sell("S2", "2024-02-02", 2.5, 70),
	}
	inv := NewInventory()
	if err := inv.Apply(txs); err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}

	sold := map[string]Quantity{}
	proceeds := Q(0)
	for _, s := range inv.Sales() {
		sold[s.LotID()] = sold[s.LotID()].Add(s.Measure())
		proceeds = proceeds.Add(s.Proceeds().Value())
	}
	total := Q(0)
	for _, q := range sold {
		total = total.Add(q)
	}
	if want := Q(5.5); !total.Equal(want) {
		t.Errorf("sold %v in total, want %v", total, want)
	}
	if want := Q(150); !proceeds.Equal(want) {
		t.Errorf("proceeds sum to %v, want %v", proceeds, want)
	}

	// every lot keeps what it did not sell.
	for _, l := range inv.Lots() {
		if got := l.Current().Add(sold[l.ID]); !got.Equal(l.OriginalAmount) {
			t.Errorf("lot %s: current %v + sold %v != original %v", l.ID, l.Current(), sold[l.ID], l.OriginalAmount)
		}
	}
}

func TestInventory_SaleInOtherUnit(t *testing.T) {
	ounce := buy("P1", "2024-01-02", 1, 2000)
	ounce.Unit = TroyOunce
	inv := NewInventory()
	if err := inv.Apply([]Transaction{ounce, sell("S1", "2024-03-01", 31.1034768, 2100)}); err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}
	sales := inv.Sales()
	if len(sales) != 1 {
		t.Fatalf("Sales() returned %d sales, want 1", len(sales))
	}
	if got, want := sales[0].Measure(), Q(1); !got.Equal(want) || sales[0].Unit() != TroyOunce {
		t.Errorf("sale measure = %v %v, want %v troy-ounce", got, sales[0].Unit(), want)
	}
	if got, want := sales[0].AdjustedBasis().Value, USD(2000); !got.Equal(want) {
		t.Errorf("sale basis = %v, want %v", got, want)
	}
	if open := inv.OpenLots(); len(open) != 0 {
		t.Errorf("OpenLots() = %d lots, want none", len(open))
	}
}

func TestInventory_Errors(t *testing.T) {
	testCases := []struct {
		name string
		txs  []Transaction
		want error
	}{
		{
			name: "fee in asset larger than the lot",
			txs:  []Transaction{buy("P1", "2024-01-01", 0.5, 10), feeInAsset("F1", "2024-01-02", 1)},
			want: ErrInsufficientInventory,
		},
		{
			name: "sale larger than the lots",
			txs:  []Transaction{buy("P1", "2024-01-01", 2, 10), sell("S1", "2024-01-02", 3, 20)},
			want: ErrInsufficientInventory,
		},
		{
			name: "sale before the purchase",
			txs:  []Transaction{sell("S1", "2024-01-01", 1, 20), buy("P1", "2024-01-02", 2, 10)},
			want: ErrInsufficientInventory,
		},
		{
			name: "sale of another item",
			txs: func() []Transaction {
				s := sell("S1", "2024-01-02", 1, 20)
				s.ItemType = "Eagle"
				return []Transaction{buy("P1", "2024-01-01", 2, 10), s}
			}(),
			want: ErrInsufficientInventory,
		},
		{
			name: "negative amount",
			txs:  []Transaction{buy("P1", "2024-01-01", -1, 10)},
			want: ErrMalformedInput,
		},
		{
			name: "sale of nothing",
			txs:  []Transaction{buy("P1", "2024-01-01", 1, 10), sell("S1", "2024-01-02", 0, 10)},
			want: ErrMalformedInput,
		},
		{
			name: "fee in another currency",
			txs: func() []Transaction {
				f := feeInCurrency("F1", "2024-01-02", 5)
				f.Currency = "EUR"
				return []Transaction{buy("P1", "2024-01-01", 1, 10), f}
			}(),
			want: ErrUnsupportedConversion,
		},
		{
			name: "sale in another currency",
			txs: func() []Transaction {
				s := sell("S1", "2024-01-02", 4, 50)
				s.Currency = "EUR"
				return []Transaction{buy("P1", "2024-01-01", 10, 100), s}
			}(),
			want: ErrUnsupportedConversion,
		},
		{
			name: "transfer larger than the source lots",
			txs: []Transaction{
				buy("P1", "2024-01-01", 2, 20),
				send("T1", "2024-03-01 10:00", 3),
				in(receive("T1-in", "2024-03-01 11:00", 3), "Vaultco", "B2", "V2"),
			},
			want: ErrInsufficientInventory,
		},
		{
			name: "transfer without source vault",
			txs: func() []Transaction {
				out := send("T1", "2024-03-01 10:00", 1)
				out.Vault = ""
				return []Transaction{
					buy("P1", "2024-01-01", 2, 20),
					out,
					in(receive("T1-in", "2024-03-01 11:00", 1), "Vaultco", "B2", "V2"),
				}
			}(),
			want: ErrMalformedInput,
		},
		{
			name: "fee in asset from another vault",
			txs: func() []Transaction {
				f := feeInAsset("F1", "2024-01-02", 1)
				f.Vault = "V2"
				return []Transaction{buy("P1", "2024-01-01", 2, 20), f}
			}(),
			want: ErrInsufficientInventory,
		},
		{
			name: "fee in currency without lot",
			txs:  []Transaction{feeInCurrency("F1", "2024-01-02", 5)},
			want: ErrInsufficientInventory,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewInventory().Apply(tc.txs)
			if !errors.Is(err, tc.want) {
				t.Errorf("Apply() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestInventory_Reused(t *testing.T) {
	inv := NewInventory()
	if err := inv.Apply([]Transaction{buy("P1", "2024-01-01", 1, 10)}); err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}
	if err := inv.Apply([]Transaction{buy("P2", "2024-01-02", 1, 10)}); !errors.Is(err, ErrReused) {
		t.Errorf("second Apply() error = %v, want %v", err, ErrReused)
	}
}

func TestInventory_FeeInCurrency(t *testing.T) {
	t.Run("raises the basis, not the quantity", func(t *testing.T) {
		inv := NewInventory()
		err := inv.Apply([]Transaction{
			buy("P1", "2024-01-01", 10, 100),
			feeInCurrency("F1", "2024-01-15", 5),
			sell("S1", "2024-02-01", 10, 200),
		})
		if err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		lot, _ := inv.Lot("P1")
		if got, want := lot.OriginalAmount, Q(10); !got.Equal(want) {
			t.Errorf("lot original amount = %v, want %v", got, want)
		}
		sales := inv.Sales()
		if len(sales) != 1 {
			t.Fatalf("Sales() returned %d sales, want 1", len(sales))
		}
		if got, want := sales[0].Measure(), Q(10); !got.Equal(want) {
			t.Errorf("sale measure = %v, want %v", got, want)
		}
		if got, want := sales[0].AdjustedBasis().Value, USD(105); !got.Equal(want) {
			t.Errorf("sale basis = %v, want %v", got, want)
		}
	})

	t.Run("charges a lot closed the same month", func(t *testing.T) {
		inv := NewInventory()
		err := inv.Apply([]Transaction{
			buy("P1", "2024-01-01", 1, 100),
			sell("S1", "2024-03-15", 1, 150),
			feeInCurrency("F1", "2024-03-20", 5),
		})
		if err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		lot, _ := inv.Lot("P1")
		if got, want := lot.AdjustedBasis().Value, USD(5); !got.Equal(want) {
			t.Errorf("lot adjusted basis = %v, want %v", got, want)
		}
	})

	t.Run("ignores a lot closed the month before", func(t *testing.T) {
		err := NewInventory().Apply([]Transaction{
			buy("P1", "2024-01-01", 1, 100),
			sell("S1", "2024-03-15", 1, 150),
			feeInCurrency("F1", "2024-04-02", 5),
		})
		if !errors.Is(err, ErrInsufficientInventory) {
			t.Errorf("Apply() error = %v, want %v", err, ErrInsufficientInventory)
		}
	})
}

func TestInventory_FeeInAsset(t *testing.T) {
	fee := feeInAsset("F1", "2024-02-01", 3)
	fee.Vault = "ANY"
	inv := NewInventory()
	err := inv.Apply([]Transaction{
		buy("P1", "2024-01-01", 2, 20),
		in(buy("P2", "2024-01-02", 2, 20), "Dealer", "A1", "V2"),
		fee,
	})
	if err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}
	p1, _ := inv.Lot("P1")
	p2, _ := inv.Lot("P2")
	if !p1.IsDepleted() {
		t.Errorf("lot P1 current = %v, want depleted", p1.Current())
	}
	if got, want := p2.Current(), Q(1); !got.Equal(want) {
		t.Errorf("lot P2 current = %v, want %v", got, want)
	}
	if got, want := p1.AdjustedBasis().Value, USD(20); !got.Equal(want) {
		t.Errorf("lot P1 adjusted basis = %v, want %v", got, want)
	}
	if len(inv.Sales()) != 0 {
		t.Errorf("Sales() = %v, want none", inv.Sales())
	}
}

func TestInventory_Transfer(t *testing.T) {
	t.Run("splits the lot", func(t *testing.T) {
		inv := NewInventory()
		err := inv.Apply([]Transaction{
			buy("P1", "2024-01-01", 10, 100),
			send("T1", "2024-03-01 10:00", 4),
			in(receive("T1-in", "2024-03-01 12:00", 4), "Vaultco", "B2", "V2"),
			in(sell("S1", "2024-04-01", 4, 60), "Vaultco", "B2", "V2"),
		})
		if err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		src, _ := inv.Lot("P1")
		if got, want := src.Current(), Q(6); !got.Equal(want) {
			t.Errorf("source lot current = %v, want %v", got, want)
		}
		if got, want := src.AdjustedBasis().Value, USD(60); !got.Equal(want) {
			t.Errorf("source lot adjusted basis = %v, want %v", got, want)
		}
		split, ok := inv.Lot("P1-split")
		if !ok {
			t.Fatalf("Lot(%q) not found", "P1-split")
		}
		if split.Service() != "Vaultco" || split.Account() != "B2" || split.Vault() != "V2" {
			t.Errorf("split lot held by %s/%s/%s, want Vaultco/B2/V2", split.Service(), split.Account(), split.Vault())
		}
		if !split.PurchaseDate.Equal(at("2024-01-01")) {
			t.Errorf("split lot purchase date = %v, want 2024-01-01", split.PurchaseDate)
		}
		if got, want := split.OriginalBasis.Value, USD(40); !got.Equal(want) {
			t.Errorf("split lot original basis = %v, want %v", got, want)
		}
		sales := inv.Sales()
		if len(sales) != 1 || sales[0].LotID() != "P1-split" {
			t.Fatalf("Sales() = %v, want one sale from P1-split", sales)
		}
		if got, want := sales[0].AdjustedBasis().Value, USD(40); !got.Equal(want) {
			t.Errorf("sale basis = %v, want %v", got, want)
		}
	})

	t.Run("splits a lot covering the exact amount", func(t *testing.T) {
		inv := NewInventory()
		err := inv.Apply([]Transaction{
			buy("P1", "2024-01-01", 4, 40),
			send("T1", "2024-03-01 10:00", 4),
			in(receive("T1-in", "2024-03-01 11:00", 4), "Vaultco", "B2", "V2"),
		})
		if err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		src, _ := inv.Lot("P1")
		if !src.IsDepleted() || src.Vault() != "V1" {
			t.Errorf("source lot current = %v in %s, want depleted in V1", src.Current(), src.Vault())
		}
		if closed, ok := src.CloseDate(); !ok || !closed.Equal(at("2024-03-01 11:00")) {
			t.Errorf("source lot CloseDate() = %v, %v, want 2024-03-01 11:00", closed, ok)
		}
		split, ok := inv.Lot("P1-split")
		if !ok {
			t.Fatalf("Lot(%q) not found", "P1-split")
		}
		if split.Service() != "Vaultco" || split.Account() != "B2" || split.Vault() != "V2" {
			t.Errorf("split lot held by %s/%s/%s, want Vaultco/B2/V2", split.Service(), split.Account(), split.Vault())
		}
		if got, want := split.Current(), Q(4); !got.Equal(want) {
			t.Errorf("split lot current = %v, want %v", got, want)
		}
		if got, want := split.AdjustedBasis().Value, USD(40); !got.Equal(want) {
			t.Errorf("split lot adjusted basis = %v, want %v", got, want)
		}
	})

	t.Run("moves smaller lots whole", func(t *testing.T) {
		inv := NewInventory()
		err := inv.Apply([]Transaction{
			buy("P1", "2024-01-01", 2, 20),
			buy("P2", "2024-01-02", 5, 50),
			send("T1", "2024-03-01 10:00", 4),
			in(receive("T1-in", "2024-03-01 11:00", 4), "Vaultco", "B2", "V2"),
		})
		if err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		p1, _ := inv.Lot("P1")
		if p1.Service() != "Vaultco" || p1.Account() != "B2" || p1.Vault() != "V2" || !p1.Current().Equal(Q(2)) {
			t.Errorf("lot P1 = %v held by %s/%s/%s, want 2 held by Vaultco/B2/V2", p1.Current(), p1.Service(), p1.Account(), p1.Vault())
		}
		p2, _ := inv.Lot("P2")
		if got, want := p2.Current(), Q(3); !got.Equal(want) {
			t.Errorf("lot P2 current = %v, want %v", got, want)
		}
		split, ok := inv.Lot("P2-split")
		if !ok || !split.Current().Equal(Q(2)) || split.Vault() != "V2" {
			t.Errorf("Lot(%q) = %v, %v, want 2 in V2", "P2-split", split, ok)
		}
	})

	t.Run("books the shortfall as a fee", func(t *testing.T) {
		inv := NewInventory()
		err := inv.Apply([]Transaction{
			buy("P1", "2024-01-01", 10, 100),
			send("T1", "2024-03-01 10:00", 5),
			in(receive("T1-in", "2024-03-01 12:00", 4.5), "Vaultco", "B2", "V2"),
		})
		if err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		src, _ := inv.Lot("P1")
		if got, want := src.Current(), Q(5); !got.Equal(want) {
			t.Errorf("source lot current = %v, want %v", got, want)
		}
		split, _ := inv.Lot("P1-split")
		if got, want := split.Current(), Q(4.5); !got.Equal(want) {
			t.Errorf("split lot current = %v, want %v", got, want)
		}
	})

	t.Run("unmatched inbound leg changes no lot", func(t *testing.T) {
		stray := in(receive("R1", "2024-03-01 12:00", 4), "Vaultco", "B2", "V2")
		inv := NewInventory()
		if err := inv.Apply([]Transaction{buy("P1", "2024-01-01", 10, 100), stray}); err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		if diff := cmp.Diff([]Transaction{stray}, inv.Unmatched(), compareValues); diff != "" {
			t.Errorf("Unmatched() mismatch (-want +got):\n%s", diff)
		}
		lots := inv.Lots()
		if len(lots) != 1 || !lots[0].Current().Equal(Q(10)) || lots[0].Vault() != "V1" {
			t.Errorf("Lots() = %v, want lot P1 untouched", lots)
		}
	})
}

func TestInventory_ExchangeMatching(t *testing.T) {
	var log collect
	inv := NewInventory(WithExchangeMatcher(NewMatchSimilarTransactions()), WithLogWriter(&log))
	err := inv.Apply([]Transaction{
		buy("P1", "2024-01-01", 10, 100),
		sell("S1", "2024-03-01", 10, 300),
		in(buy("P2", "2024-03-05", 10, 310), "Dealer2", "A2", "V2"),
	})
	if err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}
	if sales := inv.Sales(); len(sales) != 0 {
		t.Errorf("Sales() = %v, want none", sales)
	}
	lots := inv.Lots()
	if len(lots) != 1 {
		t.Fatalf("Lots() returned %d lots, want 1", len(lots))
	}
	if l := lots[0]; l.ID != "P1" || l.Vault() != "V2" || !l.AdjustedBasis().Value.Equal(USD(100)) {
		t.Errorf("lot %s in %s with basis %v, want P1 in V2 with basis $100", l.ID, l.Vault(), l.AdjustedBasis().Value)
	}
	// header, match, trailer, then the purchase and the transfer.
	if len(log) != 5 {
		t.Errorf("log has %d lines, want 5:\n%v", len(log), log)
	}
}

func TestInventory_CopiesAreDefensive(t *testing.T) {
	inv := NewInventory()
	if err := inv.Apply([]Transaction{buy("P1", "2024-01-01", 10, 100)}); err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}
	inv.Lots()[0].SetVault(at("2024-02-01"), "elsewhere")
	if lot, _ := inv.Lot("P1"); lot.Vault() != "V1" {
		t.Errorf("lot vault = %q after changing a copy, want V1", lot.Vault())
	}
	if history := inv.Lots()[0].History(); len(history) != 1 {
		t.Errorf("lot history has %d entries, want 1: %v", len(history), history)
	}
}

func TestInventory_LogsEveryTransaction(t *testing.T) {
	var log collect
	inv := NewInventory(WithLogWriter(&log))
	err := inv.Apply([]Transaction{
		buy("P1", "2024-01-01", 10, 100),
		feeInCurrency("F1", "2024-01-02", 1),
		feeInAsset("F2", "2024-01-03", 1),
		sell("S1", "2024-01-04", 1, 20),
	})
	if err != nil {
		t.Fatalf("Apply() returned an unexpected error: %v", err)
	}
	if len(log) != 4 {
		t.Errorf("log has %d lines, want 4:\n%v", len(log), log)
	}
	if got := inv.Transactions(); len(got) != 4 {
		t.Errorf("Transactions() returned %d transactions, want 4", len(got))
	}
}
