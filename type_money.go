package khata

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DisplayCurrency is the ISO code used by Money.String.
var DisplayCurrency = "PKR"

// Money represents a monetary value in the shop currency.
type Money struct {
	value decimal.Decimal // as major unit value
}

// M returns a Money.
func M[T float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a decimal amount such as "1500" or "99.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value)} }
func (m Money) Ceil() Money                     { return Money{value: m.value.Ceil()} }
func (m Money) Decimal() decimal.Decimal        { return m.value }

// Percent returns m as a percentage of total, or zero when total is zero.
func (m Money) Percent(total Money) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return m.value.Mul(decimal.NewFromInt(100)).Div(total.value).Round(1)
}

// Format renders the amount with the grapheme and separators of an ISO currency.
func (m Money) Format(code string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, code).Currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// String returns the amount formatted in the DisplayCurrency.
func (m Money) String() string { return m.Format(DisplayCurrency) }

// Plain returns the amount with two decimals and no currency, for machine readable exports.
func (m Money) Plain() string { return m.value.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

func (m *Money) UnmarshalJSON(decimalBytes []byte) error {
	return m.value.UnmarshalJSON(decimalBytes)
}
