package assettrack

import (
	"fmt"
	"time"
)

// AssetAmount is a typed quantity of a specific item.
type AssetAmount struct {
	Measure   Quantity
	AssetType AssetType
	Unit      Unit
	ItemType  string
}

// sameKind checks that a and b designate the same asset and item.
func (a AssetAmount) sameKind(assetType AssetType, itemType string) error {
	if a.AssetType != assetType {
		return fmt.Errorf("%w: asset types %s and %s", ErrTypeMismatch, a.AssetType, assetType)
	}
	if a.ItemType != itemType {
		return fmt.Errorf("%w: item types %q and %q", ErrTypeMismatch, a.ItemType, itemType)
	}
	return nil
}

// Sub returns a - b, expressed in a's unit.
func (a AssetAmount) Sub(b AssetAmount) (AssetAmount, error) {
	if err := a.sameKind(b.AssetType, b.ItemType); err != nil {
		return AssetAmount{}, err
	}
	m, err := ConvertUnit(b.Measure, b.Unit, a.Unit)
	if err != nil {
		return AssetAmount{}, err
	}
	a.Measure = a.Measure.Sub(m)
	return a, nil
}

// In returns the measure expressed in unit.
func (a AssetAmount) In(unit Unit) (Quantity, error) {
	return ConvertUnit(a.Measure, a.Unit, unit)
}

// AmountInAsset is a quantity still to be served by lots: a fee to pay or a
// transfer to cover.
type AmountInAsset struct {
	Date          time.Time
	TransactionID string
	Vault         string
	Amount        Quantity
	Unit          Unit
	AssetType     AssetType
}

// Decrease removes amount (in unit) from the remaining quantity.
func (a *AmountInAsset) Decrease(amount Quantity, unit Unit) error {
	m, err := ConvertUnit(amount, unit, a.Unit)
	if err != nil {
		return err
	}
	left := a.Amount.Sub(m)
	if left.negligible() {
		left = Quantity{}
	}
	if left.IsNegative() {
		return fmt.Errorf("transaction %s: cannot decrease %s %s by %s %s", a.TransactionID, a.Amount, a.Unit, amount, unit)
	}
	a.Amount = left
	return nil
}
