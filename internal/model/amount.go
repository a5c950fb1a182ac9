package model

import "github.com/shopspring/decimal"

// Amount is a decimal money value. It encodes as a bare JSON number so schema
// "number" types accept it, independent of decimal's package-level settings.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountPtr wraps d and returns a pointer for optional fields.
func AmountPtr(d decimal.Decimal) *Amount {
	a := NewAmount(d)
	return &a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return NewAmount(a.Decimal.Add(b.Decimal))
}

// Abs returns the absolute value of a.
func (a Amount) Abs() Amount {
	return NewAmount(a.Decimal.Abs())
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. Quoted and bare numbers are both
// accepted.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}
