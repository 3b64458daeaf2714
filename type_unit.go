package assettrack

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GramsPerTroyOunce is the exact weight of one troy ounce.
var GramsPerTroyOunce = Q(decimal.RequireFromString("31.1034768"))

// Unit is the measurement unit of an asset quantity.
type Unit string

const (
	Gram      Unit = "gram"
	TroyOunce Unit = "troy-ounce"
	Coin      Unit = "coin"
)

func (u Unit) String() string { return string(u) }

// IsWeight reports whether u measures a weight.
func (u Unit) IsWeight() bool { return u == Gram || u == TroyOunce }

// ParseUnit accepts canonical names and the spellings found in custodian files.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gram", "g", "grams":
		return Gram, nil
	case "troy-ounce", "troyoz", "oz", "ozt":
		return TroyOunce, nil
	case "coin", "cryptocoin":
		return Coin, nil
	default:
		return "", fmt.Errorf("%w: unknown measurement unit %q", ErrMalformedInput, s)
	}
}

// ConvertUnit expresses q, measured in from, in the unit to. Weights convert
// through grams; a coin count never converts to a weight.
func ConvertUnit(q Quantity, from, to Unit) (Quantity, error) {
	if from == to {
		return q, nil
	}
	if !from.IsWeight() || !to.IsWeight() {
		return Quantity{}, fmt.Errorf("%w: cannot convert %s to %s", ErrTypeMismatch, from, to)
	}
	grams := q
	if from == TroyOunce {
		grams = q.Mul(GramsPerTroyOunce)
	}
	if to == TroyOunce {
		return grams.Div(GramsPerTroyOunce), nil
	}
	return grams, nil
}

// AssetType is the broad category of an asset.
type AssetType string

const (
	Gold      AssetType = "gold"
	Silver    AssetType = "silver"
	Platinum  AssetType = "platinum"
	Palladium AssetType = "palladium"
	Crypto    AssetType = "crypto"
)

func (a AssetType) String() string { return string(a) }

// NativeUnit is the unit sales are normalized to: coins for crypto, grams for metals.
func (a AssetType) NativeUnit() Unit {
	if a == Crypto {
		return Coin
	}
	return Gram
}

// ParseAssetType parses an asset category, case insensitive.
func ParseAssetType(s string) (AssetType, error) {
	switch a := AssetType(strings.ToLower(strings.TrimSpace(s))); a {
	case Gold, Silver, Platinum, Palladium, Crypto:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown asset type %q", ErrMalformedInput, s)
	}
}
