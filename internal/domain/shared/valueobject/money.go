package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default base currency)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	KES Currency = "KES" // Kenyan Shilling
	NGN Currency = "NGN" // Nigerian Naira
	INR Currency = "INR" // Indian Rupee
)

// DefaultCurrency is the default base currency for the system
const DefaultCurrency = USD

// String returns the ISO 4217 code
func (c Currency) String() string {
	return string(c)
}

// IsValid returns true if the currency is one of the supported codes
func (c Currency) IsValid() bool {
	switch c {
	case USD, EUR, GBP, KES, NGN, INR:
		return true
	}
	return false
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyBase creates Money in the default base currency
func NewMoneyBase(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

// NewMoneyBaseFromFloat creates Money in the default base currency from float64
func NewMoneyBaseFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: DefaultCurrency}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroBase returns a zero-value Money in the default base currency
func ZeroBase() Money {
	return Zero(DefaultCurrency)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Sub(other.amount),
		currency: m.currency,
	}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(factor),
		currency: m.currency,
	}
}

// Convert converts this Money into the target currency at the given exchange rate.
// The rate is the multiplier from this Money's currency to the target currency.
func (m Money) Convert(rate decimal.Decimal, target Currency) (Money, error) {
	if target == "" {
		return Money{}, errors.New("target currency cannot be empty")
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return Money{}, errors.New("exchange rate must be positive")
	}
	return Money{
		amount:   m.amount.Mul(rate),
		currency: target,
	}, nil
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{
		amount:   m.amount.Neg(),
		currency: m.currency,
	}
}

// Round returns a new Money rounded to the specified decimal places
func (m Money) Round(places int32) Money {
	return Money{
		amount:   m.amount.Round(places),
		currency: m.currency,
	}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a human-readable representation
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.String(), m.currency)
}
