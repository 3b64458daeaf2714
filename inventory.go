package assettrack

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/assettrack/date"
)

// AnyVault in a fee's vault lets the fee draw from lots in every vault.
const AnyVault = "any"

// Inventory holds the lots and realized sales built from one batch of
// transactions.
//
// An Inventory serves a single run: Apply can only be called once.
type Inventory struct {
	log     LogWriter
	dedup   []DedupPolicy
	matcher ExchangeMatcher

	used         bool
	lots         []*Lot
	sales        []TaxableSale
	transactions []Transaction
	unmatched    []Transaction
}

// Option configures an Inventory.
type Option func(*Inventory)

// WithLogWriter sends the processing trace to w.
func WithLogWriter(w LogWriter) Option {
	return func(inv *Inventory) {
		if w != nil {
			inv.log = w
		}
	}
}

// WithDedupPolicies replaces DefaultDedupPolicies.
func WithDedupPolicies(policies ...DedupPolicy) Option {
	return func(inv *Inventory) { inv.dedup = slices.Clone(policies) }
}

// WithExchangeMatcher folds like-kind exchanges with m before applying
// transactions. A nil matcher disables exchange matching.
func WithExchangeMatcher(m ExchangeMatcher) Option {
	return func(inv *Inventory) { inv.matcher = m }
}

// NewInventory creates an empty Inventory.
func NewInventory(opts ...Option) *Inventory {
	inv := &Inventory{
		log:   discard{},
		dedup: slices.Clone(DefaultDedupPolicies),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Apply runs the whole batch: duplicates are scrubbed, transfer legs paired,
// exchanges folded, and every remaining transaction applied in date order.
//
// Any failure aborts the run and leaves the inventory as it was at the failing
// transaction.
func (inv *Inventory) Apply(txs []Transaction) error {
	if inv.used {
		return ErrReused
	}
	inv.used = true

	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
	}

	rec, err := ReconcileTransfers(ScrubDuplicates(txs, inv.dedup...))
	if err != nil {
		return err
	}
	inv.unmatched = rec.Unmatched
	for _, tx := range rec.Unmatched {
		inv.log.WriteLine(fmt.Sprintf("%v: %s %s of %s %s %s on %s (transaction ID %s) set aside",
			ErrUnmatchedCounterparty, tx.Service, tx.Type, tx.Measure(), tx.Unit, tx.AssetType, tx.DateTime.Format(time.DateOnly), tx.ID))
	}

	ready := rec.Transactions
	if inv.matcher != nil {
		if ready, err = inv.matcher.FormLikeKindExchanges(ready, inv.log); err != nil {
			return err
		}
	}
	for _, tx := range sortedByDate(ready) {
		if err := inv.apply(tx); err != nil {
			return fmt.Errorf("applying %s %s: %w", tx.Type, tx.ID, err)
		}
		inv.transactions = append(inv.transactions, tx)
	}
	return nil
}

func (inv *Inventory) apply(tx Transaction) error {
	switch tx.Type {
	case Purchase, PurchaseViaExchange:
		return inv.purchase(tx)
	case Sale, SaleViaExchange:
		return inv.sell(tx)
	case TransferIn:
		return inv.transfer(tx)
	case FeeInAsset:
		return inv.feeInAsset(tx)
	case FeeInCurrency:
		return inv.feeInCurrency(tx)
	case TransferOut:
		return fmt.Errorf("%w: outbound transfer %s was not reconciled", ErrMalformedInput, tx.ID)
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrMalformedInput, tx.Type)
	}
}

func (inv *Inventory) purchase(tx Transaction) error {
	lot := NewLot(tx.Service, tx.ID, tx.DateTime, tx.AmountReceived, tx.Unit, Basis{Value: tx.paid(), Date: tx.DateTime},
		tx.AssetType, tx.Vault, tx.Account, tx.ItemType)
	inv.lots = append(inv.lots, lot)
	inv.log.WriteLine(fmt.Sprintf("Purchased %s %s %s (%s) at %s for %s %s, vault %s (transaction ID %s)",
		tx.AmountReceived, tx.Unit, tx.AssetType, tx.ItemType, tx.Service, tx.AmountPaid.Fixed(2), tx.Currency, tx.Vault, tx.ID))
	return nil
}

// sell depletes the service's oldest lots of the item, one TaxableSale per
// lot touched, splitting the proceeds pro rata.
func (inv *Inventory) sell(tx Transaction) error {
	unit := tx.AssetType.NativeUnit()
	total, err := tx.MeasureIn(unit)
	if err != nil {
		return err
	}
	proceeds := tx.received()
	remaining := AssetAmount{Measure: total, AssetType: tx.AssetType, Unit: unit, ItemType: tx.ItemType}

	for _, lot := range inv.fifo(func(l *Lot) bool {
		return !l.IsDepleted() && l.service == tx.Service && l.AssetType == tx.AssetType && l.ItemType == tx.ItemType
	}) {
		if remaining.Measure.negligible() {
			break
		}
		amount, err := lot.AmountToSell(remaining)
		if err != nil {
			return err
		}
		slice, err := amount.In(unit)
		if err != nil {
			return err
		}
		sale, err := lot.Sell(tx.DateTime, amount, proceeds.Mul(slice).Div(total))
		if err != nil {
			return err
		}
		inv.sales = append(inv.sales, sale)
		if remaining, err = remaining.Sub(amount); err != nil {
			return err
		}
	}
	if !remaining.Measure.negligible() {
		return fmt.Errorf("%w: %s holds too little %s (%s) to sell %s %s, %s %s missing",
			ErrInsufficientInventory, tx.Service, tx.AssetType, tx.ItemType, total, unit, remaining.Measure, unit)
	}
	inv.log.WriteLine(fmt.Sprintf("Sold %s %s %s (%s) at %s for %s %s (transaction ID %s)",
		tx.AmountPaid, tx.Unit, tx.AssetType, tx.ItemType, tx.Service, tx.AmountReceived.Fixed(2), tx.Currency, tx.ID))
	return nil
}

// transfer moves the oldest lots of the source vault and account to the
// destination. Lots smaller than what is still pending are reassigned whole,
// the lot covering the rest is split, even when it covers it exactly.
func (inv *Inventory) transfer(tx Transaction) error {
	src := tx.Source
	if src.Vault == "" || src.Account == "" {
		return fmt.Errorf("%w: transfer %s has no source vault and account", ErrMalformedInput, tx.ID)
	}
	pending := AmountInAsset{Date: tx.DateTime, TransactionID: tx.ID, Vault: src.Vault, Amount: tx.AmountReceived, Unit: tx.Unit, AssetType: tx.AssetType}

	for _, lot := range inv.fifo(func(l *Lot) bool {
		return !l.IsDepleted() && l.vault == src.Vault && l.account == src.Account && l.AssetType == tx.AssetType && l.ItemType == tx.ItemType
	}) {
		if pending.Amount.negligible() {
			break
		}
		wanted, err := ConvertUnit(pending.Amount, pending.Unit, lot.Unit)
		if err != nil {
			return err
		}
		if left := lot.current.Sub(wanted); !left.IsNegative() || left.negligible() {
			if left.negligible() {
				wanted = lot.current
			}
			split, err := lot.Split(tx.DateTime, inv.splitID(lot.ID), wanted, tx.Service, tx.Account, tx.Vault)
			if err != nil {
				return err
			}
			inv.lots = append(inv.lots, split)
			pending.Amount = Quantity{}
			break
		}
		moved := lot.current
		lot.SetService(tx.DateTime, tx.Service)
		lot.SetAccount(tx.DateTime, tx.Account)
		lot.SetVault(tx.DateTime, tx.Vault)
		if err := pending.Decrease(moved, lot.Unit); err != nil {
			return err
		}
	}
	if !pending.Amount.negligible() {
		return fmt.Errorf("%w: vault %s account %s holds too little %s (%s) to transfer %s %s, %s %s missing",
			ErrInsufficientInventory, src.Vault, src.Account, tx.AssetType, tx.ItemType, tx.AmountReceived, tx.Unit, pending.Amount, pending.Unit)
	}
	inv.log.WriteLine(fmt.Sprintf("Transferred %s %s %s (%s) from %s vault %s to %s vault %s (transaction ID %s)",
		tx.AmountReceived, tx.Unit, tx.AssetType, tx.ItemType, src.Service, src.Vault, tx.Service, tx.Vault, tx.ID))
	return nil
}

func (inv *Inventory) feeInAsset(tx Transaction) error {
	pending := AmountInAsset{Date: tx.DateTime, TransactionID: tx.ID, Vault: tx.Vault, Amount: tx.AmountPaid, Unit: tx.Unit, AssetType: tx.AssetType}
	for _, lot := range inv.fifo(func(l *Lot) bool { return !l.IsDepleted() && feePayer(l, tx) }) {
		if pending.Amount.negligible() {
			break
		}
		wanted, err := ConvertUnit(pending.Amount, pending.Unit, lot.Unit)
		if err != nil {
			return err
		}
		take := lot.current.Min(wanted)
		if err := lot.DecreaseViaFee(tx.DateTime, take, lot.Unit); err != nil {
			return err
		}
		if err := pending.Decrease(take, lot.Unit); err != nil {
			return err
		}
	}
	if !pending.Amount.negligible() {
		return fmt.Errorf("%w: %s account %s holds too little %s (%s) to pay a fee of %s %s, %s %s missing",
			ErrInsufficientInventory, tx.Service, tx.Account, tx.AssetType, tx.ItemType, tx.AmountPaid, tx.Unit, pending.Amount, pending.Unit)
	}
	inv.log.WriteLine(fmt.Sprintf("Paid fee of %s %s %s (%s) at %s, vault %s (transaction ID %s)",
		tx.AmountPaid, tx.Unit, tx.AssetType, tx.ItemType, tx.Service, tx.Vault, tx.ID))
	return nil
}

// feeInCurrency adds the fee to the basis of the oldest lot it relates to: one
// still open, or one closed during the fee's month.
func (inv *Inventory) feeInCurrency(tx Transaction) error {
	month := date.Month(date.Of(tx.DateTime))
	lots := inv.fifo(func(l *Lot) bool {
		if !feePayer(l, tx) {
			return false
		}
		closed, ok := l.CloseDate()
		return !ok || month.Contains(date.Of(closed))
	})
	if len(lots) == 0 {
		return fmt.Errorf("%w: no %s (%s) lot at %s account %s to charge a fee of %s %s",
			ErrInsufficientInventory, tx.AssetType, tx.ItemType, tx.Service, tx.Account, tx.AmountPaid.Fixed(2), tx.Currency)
	}
	if err := lots[0].ApplyFeeInCurrency(tx.DateTime, tx.paid()); err != nil {
		return err
	}
	inv.log.WriteLine(fmt.Sprintf("Charged fee of %s %s to lot %s (transaction ID %s)",
		tx.AmountPaid.Fixed(2), tx.Currency, lots[0].ID, tx.ID))
	return nil
}

// feePayer reports whether l can pay fees charged by tx.
func feePayer(l *Lot, tx Transaction) bool {
	if l.service != tx.Service || l.AssetType != tx.AssetType || l.account != tx.Account || l.ItemType != tx.ItemType {
		return false
	}
	return strings.EqualFold(tx.Vault, AnyVault) || l.vault == tx.Vault
}

// fifo returns the lots matching keep, oldest purchase first.
func (inv *Inventory) fifo(keep func(*Lot) bool) []*Lot {
	var lots []*Lot
	for _, l := range inv.lots {
		if keep(l) {
			lots = append(lots, l)
		}
	}
	slices.SortStableFunc(lots, func(a, b *Lot) int { return a.PurchaseDate.Compare(b.PurchaseDate) })
	return lots
}

// splitID names a lot split from id, unique among all lots.
func (inv *Inventory) splitID(id string) string {
	base := id + "-split"
	used := make(map[string]bool, len(inv.lots))
	for _, l := range inv.lots {
		used[l.ID] = true
	}
	if !used[base] {
		return base
	}
	for n := 1; ; n++ {
		if candidate := fmt.Sprintf("%s-%d", base, n); !used[candidate] {
			return candidate
		}
	}
}

// Lots returns a copy of every lot, in creation order.
func (inv *Inventory) Lots() []*Lot {
	lots := make([]*Lot, len(inv.lots))
	for i, l := range inv.lots {
		lots[i] = l.clone()
	}
	return lots
}

// OpenLots returns a copy of the lots not depleted, oldest purchase first.
func (inv *Inventory) OpenLots() []*Lot {
	var lots []*Lot
	for _, l := range inv.fifo(func(l *Lot) bool { return !l.IsDepleted() }) {
		lots = append(lots, l.clone())
	}
	return lots
}

// Lot returns a copy of the lot with that id.
func (inv *Inventory) Lot(id string) (*Lot, bool) {
	for _, l := range inv.lots {
		if l.ID == id {
			return l.clone(), true
		}
	}
	return nil, false
}

// Sales returns the realized sales, in the order they happened.
func (inv *Inventory) Sales() []TaxableSale { return slices.Clone(inv.sales) }

// Transactions returns the transactions applied, in the order they were.
func (inv *Inventory) Transactions() []Transaction { return slices.Clone(inv.transactions) }

// Unmatched returns the transfer legs set aside for lack of a counterpart.
func (inv *Inventory) Unmatched() []Transaction { return slices.Clone(inv.unmatched) }
