package assettrack

import (
	"fmt"
	"slices"
	"time"
)

// Lot is one acquisition of an asset, depleted first-in first-out.
//
// A Lot is never deleted. Its current amount only decreases, and its close
// date is set once, when the current amount first reaches zero.
type Lot struct {
	ID             string
	PurchaseDate   time.Time
	OriginalAmount Quantity
	Unit           Unit
	OriginalBasis  Basis
	AssetType      AssetType
	ItemType       string

	current   Quantity
	adjusted  Basis
	vault     string
	account   string
	service   string
	history   []string
	closeDate time.Time
	closed    bool
}

// NewLot opens a lot of amount (in unit) bought for basis.
func NewLot(service, id string, purchased time.Time, amount Quantity, unit Unit, basis Basis, assetType AssetType, vault, account, itemType string) *Lot {
	l := &Lot{
		ID:             id,
		PurchaseDate:   purchased,
		OriginalAmount: amount,
		Unit:           unit,
		OriginalBasis:  basis,
		AssetType:      assetType,
		ItemType:       itemType,
		current:        amount,
		adjusted:       basis,
		vault:          vault,
		account:        account,
		service:        service,
	}
	l.record(purchased, "Opened lot: bought %s %s %s (%s) for %s %s, vault %s, account %s",
		amount, unit, assetType, itemType, basis.Value.Fixed(2), basis.Value.Currency(), vault, account)
	return l
}

func (l *Lot) record(on time.Time, format string, args ...any) {
	l.history = append(l.history, on.Format(time.DateOnly)+" "+fmt.Sprintf(format, args...))
}

// Vault returns where the lot is stored.
func (l *Lot) Vault() string { return l.vault }

// Account returns the custodian account holding the lot.
func (l *Lot) Account() string { return l.account }

// Service returns the custodian holding the lot.
func (l *Lot) Service() string { return l.service }

// Current returns the remaining amount in the lot's own unit.
func (l *Lot) Current() Quantity { return l.current }

// AdjustedBasis is the original basis plus absorbed fees, less the share of
// the basis already sold.
func (l *Lot) AdjustedBasis() Basis { return l.adjusted }

// IsDepleted reports whether nothing remains in the lot.
func (l *Lot) IsDepleted() bool { return l.current.IsZero() }

// CloseDate returns when the lot was depleted.
func (l *Lot) CloseDate() (time.Time, bool) { return l.closeDate, l.closed }

// History returns the audit trail of the lot, oldest first.
func (l *Lot) History() []string { return slices.Clone(l.history) }

// CurrentAmount returns the remaining amount expressed in unit.
func (l *Lot) CurrentAmount(unit Unit) (Quantity, error) {
	return ConvertUnit(l.current, l.Unit, unit)
}

// SetVault moves the lot to another vault.
func (l *Lot) SetVault(on time.Time, vault string) {
	l.vault = vault
	l.record(on, "Set vault to %s", vault)
}

// SetAccount moves the lot to another account.
func (l *Lot) SetAccount(on time.Time, account string) {
	l.account = account
	l.record(on, "Set account to %s", account)
}

// SetService moves the lot to another custodian.
func (l *Lot) SetService(on time.Time, service string) {
	l.service = service
	l.record(on, "Transferred lot to %s", service)
}

// ApplyFeeInCurrency adds fee to the adjusted basis. The quantity is unchanged.
func (l *Lot) ApplyFeeInCurrency(on time.Time, fee Money) error {
	converted, err := ConvertCurrency(fee, l.adjusted.Value.Currency())
	if err != nil {
		return fmt.Errorf("lot %s: %w", l.ID, err)
	}
	if l.adjusted.Value, err = l.adjusted.Value.Add(converted); err != nil {
		return fmt.Errorf("lot %s: %w", l.ID, err)
	}
	l.record(on, "Applied fee %s %s", fee.Fixed(2), fee.Currency())
	return nil
}

// DecreaseViaFee removes amount (in unit) paid as a fee in kind.
func (l *Lot) DecreaseViaFee(on time.Time, amount Quantity, unit Unit) error {
	if err := l.decrease(on, amount, unit); err != nil {
		return err
	}
	l.record(on, "Decreased by %s %s as fee", amount.Fixed(7), unit)
	return nil
}

// DecreaseViaTransfer removes amount (in unit) moved to account and vault. It
// returns the share of the original and adjusted basis that travels with the
// moved quantity; the lot keeps the rest.
func (l *Lot) DecreaseViaTransfer(on time.Time, amount Quantity, unit Unit, account, vault string) (original, adjusted Money, err error) {
	units, err := ConvertUnit(amount, unit, l.Unit)
	if err != nil {
		return Money{}, Money{}, err
	}
	if l.current.IsZero() {
		return Money{}, Money{}, fmt.Errorf("%w: lot %s is depleted", ErrInsufficientInventory, l.ID)
	}
	original = l.OriginalBasis.Value.Mul(units).Div(l.OriginalAmount)
	adjusted = l.adjusted.Value.Mul(units).Div(l.current)
	if err := l.decrease(on, amount, unit); err != nil {
		return Money{}, Money{}, err
	}
	if l.adjusted.Value, err = l.adjusted.Value.Sub(adjusted); err != nil {
		return Money{}, Money{}, err
	}
	l.record(on, "Transferred %s %s to account %s, vault %s", amount.Fixed(7), unit, account, vault)
	return original, adjusted, nil
}

// Split moves amount (in lot units) out of the lot into a new lot named id,
// held by service, account and vault. The new lot keeps the purchase date and
// carries its share of both bases.
func (l *Lot) Split(on time.Time, id string, amount Quantity, service, account, vault string) (*Lot, error) {
	original, adjusted, err := l.DecreaseViaTransfer(on, amount, l.Unit, account, vault)
	if err != nil {
		return nil, err
	}
	split := &Lot{
		ID:             id,
		PurchaseDate:   l.PurchaseDate,
		OriginalAmount: amount,
		Unit:           l.Unit,
		OriginalBasis:  Basis{Value: original, Date: l.OriginalBasis.Date},
		AssetType:      l.AssetType,
		ItemType:       l.ItemType,
		current:        amount,
		adjusted:       Basis{Value: adjusted, Date: l.adjusted.Date},
		vault:          vault,
		account:        account,
		service:        service,
	}
	split.record(on, "Split %s %s from lot %s with basis %s %s, service %s, vault %s, account %s",
		amount, l.Unit, l.ID, adjusted.Fixed(2), adjusted.Currency(), service, vault, account)
	return split, nil
}

func (l *Lot) decrease(on time.Time, amount Quantity, unit Unit) error {
	units, err := ConvertUnit(amount, unit, l.Unit)
	if err != nil {
		return fmt.Errorf("lot %s: %w", l.ID, err)
	}
	left := l.current.Sub(units)
	if left.IsNegative() {
		return fmt.Errorf("%w: lot %s holds %s %s, cannot remove %s %s", ErrInsufficientInventory, l.ID, l.current, l.Unit, amount, unit)
	}
	l.current = left
	l.closeIfDepleted(on)
	return nil
}

func (l *Lot) closeIfDepleted(on time.Time) {
	if l.current.IsZero() && !l.closed {
		l.closeDate, l.closed = on, true
	}
}

// AmountToSell returns how much of desired the lot can serve, in lot units.
func (l *Lot) AmountToSell(desired AssetAmount) (AssetAmount, error) {
	if err := desired.sameKind(l.AssetType, l.ItemType); err != nil {
		return AssetAmount{}, fmt.Errorf("lot %s: %w", l.ID, err)
	}
	m, err := desired.In(l.Unit)
	if err != nil {
		return AssetAmount{}, fmt.Errorf("lot %s: %w", l.ID, err)
	}
	return AssetAmount{Measure: l.current.Min(m), AssetType: l.AssetType, Unit: l.Unit, ItemType: l.ItemType}, nil
}

// Sell realizes the sale of amount for proceeds. The lot's adjusted basis
// shrinks by the share sold, which the returned TaxableSale carries.
func (l *Lot) Sell(on time.Time, amount AssetAmount, proceeds Money) (TaxableSale, error) {
	if err := amount.sameKind(l.AssetType, l.ItemType); err != nil {
		return TaxableSale{}, fmt.Errorf("lot %s: %w", l.ID, err)
	}
	units, err := amount.In(l.Unit)
	if err != nil {
		return TaxableSale{}, fmt.Errorf("lot %s: %w", l.ID, err)
	}
	if units.GreaterThan(l.current) {
		return TaxableSale{}, fmt.Errorf("%w: lot %s holds %s %s, cannot sell %s", ErrInsufficientInventory, l.ID, l.current, l.Unit, units)
	}
	if !units.IsPositive() {
		return TaxableSale{}, fmt.Errorf("%w: lot %s: sale quantity must be positive", ErrMalformedInput, l.ID)
	}
	if proceeds, err = ConvertCurrency(proceeds, l.adjusted.Value.Currency()); err != nil {
		return TaxableSale{}, fmt.Errorf("lot %s: %w", l.ID, err)
	}
	basis := l.adjusted.Value.Mul(units).Div(l.current)
	sale := TaxableSale{
		lotID:        l.ID,
		service:      l.service,
		assetType:    l.AssetType,
		itemType:     l.ItemType,
		unit:         l.Unit,
		purchaseDate: l.PurchaseDate,
		saleDate:     on,
		measure:      units,
		proceeds:     proceeds,
		basis:        Basis{Value: basis, Date: l.adjusted.Date},
	}
	if l.adjusted.Value, err = l.adjusted.Value.Sub(basis); err != nil {
		return TaxableSale{}, err
	}
	l.current = l.current.Sub(units)
	l.closeIfDepleted(on)
	l.record(on, "Sold %s %s %s for %s %s", units, l.Unit, l.AssetType, proceeds.Currency(), proceeds.Fixed(2))
	return sale, nil
}

// clone returns a deep copy of the lot.
func (l *Lot) clone() *Lot {
	c := *l
	c.history = slices.Clone(l.history)
	return &c
}
