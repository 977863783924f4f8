package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// MAD is the Moroccan dirham, the only currency invoices are issued in
const MAD Currency = "MAD"

// MinorUnits is the number of decimal places invoices are rounded to
const MinorUnits int32 = 2

// Money is an immutable amount of dirhams
type Money struct {
	amount decimal.Decimal
}

// NewMoneyMAD creates Money in dirhams
func NewMoneyMAD(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// ParseMoneyMAD parses a dirham amount written either way round: "1234.50",
// "1234,50" or "1 234,50".
func ParseMoneyMAD(s string) (Money, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, strings.TrimSpace(s))

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Money{}, fmt.Errorf("invalid dirham amount %q: %w", s, err)
	}
	return Money{amount: d}, nil
}

// ZeroMAD returns zero dirhams
func ZeroMAD() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency always returns MAD
func (m Money) Currency() Currency {
	return MAD
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Round rounds half away from zero to the given decimal places
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places)}
}

// Equals compares amounts numerically, so 1.5 equals 1.50
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String formats the amount with two decimals, e.g. "906.00 MAD"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MinorUnits), MAD)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON encodes the amount as a fixed two-decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.StringFixed(MinorUnits),
		Currency: MAD,
	})
}

// UnmarshalJSON accepts the MarshalJSON shape. A missing currency means MAD.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency != "" && v.Currency != MAD {
		return fmt.Errorf("unsupported currency %q", v.Currency)
	}
	parsed, err := ParseMoneyMAD(v.Amount)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
