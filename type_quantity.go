package assettrack

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is an exact amount of an asset, expressed in some Unit that is
// carried alongside it.
type Quantity struct {
	value decimal.Decimal
}

// Q builds a Quantity from any numeric value.
func Q[T float64 | int | int64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses a decimal string such as "1.25".
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: d}, nil
}

func (t Quantity) Equal(p Quantity) bool              { return t.value.Equal(p.value) }
func (t Quantity) LessThan(p Quantity) bool           { return t.value.LessThan(p.value) }
func (t Quantity) GreaterThan(p Quantity) bool        { return t.value.GreaterThan(p.value) }
func (t Quantity) GreaterThanOrEqual(p Quantity) bool { return t.value.GreaterThanOrEqual(p.value) }
func (t Quantity) Div(p Quantity) Quantity            { return Quantity{value: t.value.Div(p.value)} }
func (t Quantity) Mul(p Quantity) Quantity            { return Quantity{value: t.value.Mul(p.value)} }
func (t Quantity) Add(p Quantity) Quantity            { return Quantity{value: t.value.Add(p.value)} }
func (t Quantity) Sub(p Quantity) Quantity            { return Quantity{value: t.value.Sub(p.value)} }
func (t Quantity) Neg() Quantity                      { return Quantity{value: t.value.Neg()} }
func (t Quantity) IsNegative() bool                   { return t.value.IsNegative() }
func (t Quantity) IsPositive() bool                   { return t.value.IsPositive() }
func (t Quantity) IsZero() bool                       { return t.value.IsZero() }
func (t Quantity) Decimal() decimal.Decimal           { return t.value }
func (t Quantity) String() string                     { return t.value.String() }

// Fixed formats the quantity with exactly places decimals.
func (t Quantity) Fixed(places int32) string { return t.value.StringFixed(places) }

// Min returns the smallest of t and p.
func (t Quantity) Min(p Quantity) Quantity {
	if p.LessThan(t) {
		return p
	}
	return t
}

// MarshalJSON implements the json.Marshaler interface.
func (t Quantity) MarshalJSON() ([]byte, error) {
	return t.value.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Quantity) UnmarshalJSON(decimalBytes []byte) error {
	return t.value.UnmarshalJSON(decimalBytes)
}

// dust is the largest quantity treated as nothing left, once gram and troy
// ounce conversions have rounded.
var dust = Quantity{value: decimal.New(1, -12)}

// negligible reports whether t is within dust of zero.
func (t Quantity) negligible() bool { return t.value.Abs().LessThanOrEqual(dust.value) }
