package assettrack

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseCurrency normalizes and validates an ISO 4217 currency code.
func ParseCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || money.GetCurrency(code) == nil {
		return "", fmt.Errorf("%w: unknown currency %q", ErrMalformedInput, code)
	}
	return code, nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Value() Quantity                 { return Quantity{value: m.value} }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money            { return Money{value: m.value.Div(n.value), cur: m.cur} }

// Fixed formats the major unit value with exactly places decimals and no symbol.
func (m Money) Fixed(places int32) string { return m.value.StringFixed(places) }

// Add sums two amounts. The empty currency is weak and adopts the other one;
// two different currencies cannot be added.
func (m Money) Add(n Money) (Money, error) {
	c, err := cur(m, n)
	if err != nil {
		return Money{}, err
	}
	return Money{value: m.value.Add(n.value), cur: c}, nil
}

// Sub subtracts n from m, with the same currency rules as Add.
func (m Money) Sub(n Money) (Money, error) {
	c, err := cur(m, n)
	if err != nil {
		return Money{}, err
	}
	return Money{value: m.value.Sub(n.value), cur: c}, nil
}

// makes the "" currency totally weak.
func cur(a, b Money) (string, error) {
	if a.cur == "" {
		return b.cur, nil
	}
	if b.cur == "" {
		return a.cur, nil
	}
	if a.cur != b.cur {
		return "", fmt.Errorf("%w: %s and %s", ErrUnsupportedConversion, a.cur, b.cur)
	}
	return a.cur, nil
}

// ConvertCurrency expresses m in the currency to. Only the identity conversion
// exists.
func ConvertCurrency(m Money, to string) (Money, error) {
	if m.cur == to || m.cur == "" {
		return Money{value: m.value, cur: to}, nil
	}
	return Money{}, fmt.Errorf("%w: cannot convert %s to %s", ErrUnsupportedConversion, m.cur, to)
}

// Basis is a cost basis valued in a currency as of a date.
type Basis struct {
	Value Money
	Date  time.Time
}
