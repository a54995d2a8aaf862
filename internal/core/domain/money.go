package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyLKR Currency = "LKR"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyINR Currency = "INR"
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyLKR, CurrencyEUR, CurrencyGBP, CurrencyCAD, CurrencyAUD, CurrencyINR:
		return true
	}
	return false
}

// Money is an immutable non-negative amount in a single currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// MoneyScale is the number of decimal places an amount may carry. Stored
// amounts use the same scale, so nothing is rounded on the way to disk.
const MoneyScale = 2

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	m := Money{Amount: amount, Currency: currency}
	if err := m.validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// validate checks values that did not come through NewMoney, such as
// decoded JSON.
func (m Money) validate() error {
	if !m.Currency.IsValid() {
		return validationErrorf("Unsupported currency %q", m.Currency)
	}
	if m.Amount.IsNegative() {
		return validationError("Amount cannot be negative")
	}
	if !m.Amount.Equal(m.Amount.Round(MoneyScale)) {
		return validationErrorf("Amount cannot have more than %d decimal places", MoneyScale)
	}
	return nil
}

// MustMoney is NewMoney for literals known to be valid.
func MustMoney(amount string, currency Currency) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	m, err := NewMoney(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, validationErrorf("Cannot add %s to %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Multiply(factor int) (Money, error) {
	if factor < 0 {
		return Money{}, validationError("Multiplier cannot be negative")
	}
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(factor))), Currency: m.Currency}, nil
}

func (m Money) GreaterThan(other Money) bool {
	return m.Currency == other.Currency && m.Amount.GreaterThan(other.Amount)
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
