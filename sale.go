package assettrack

import "time"

// TaxableSale is the realized sale of a slice of one lot. It is immutable.
type TaxableSale struct {
	lotID        string
	service      string
	assetType    AssetType
	itemType     string
	unit         Unit
	purchaseDate time.Time
	saleDate     time.Time
	measure      Quantity
	proceeds     Money
	basis        Basis
}

func (s TaxableSale) LotID() string           { return s.lotID }
func (s TaxableSale) Service() string         { return s.service }
func (s TaxableSale) AssetType() AssetType    { return s.assetType }
func (s TaxableSale) ItemType() string        { return s.itemType }
func (s TaxableSale) Unit() Unit              { return s.unit }
func (s TaxableSale) PurchaseDate() time.Time { return s.purchaseDate }
func (s TaxableSale) SaleDate() time.Time     { return s.saleDate }

// Measure is the quantity sold, in the lot's unit.
func (s TaxableSale) Measure() Quantity { return s.measure }

// Proceeds is this slice's share of the sale price.
func (s TaxableSale) Proceeds() Money { return s.proceeds }

// AdjustedBasis is the share of the lot's adjusted basis sold, as it stood at
// the sale.
func (s TaxableSale) AdjustedBasis() Basis { return s.basis }

// NetGain returns proceeds minus adjusted basis.
func (s TaxableSale) NetGain() (Money, error) {
	return s.proceeds.Sub(s.basis.Value)
}
