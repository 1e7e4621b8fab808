package valuation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cryptoanalyzer/internal/provider"
)

var (
	// ErrInvalidInput is the parent of every user-input failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a non-negative number", ErrInvalidInput)
	ErrNoQuote         = fmt.Errorf("%w: no cached quote", ErrInvalidInput)
)

// PriceSource returns the last known quote for a symbol.
type PriceSource interface {
	Lookup(symbol string) (provider.Quote, bool)
}

// Calculator values holdings at the last known price.
type Calculator struct {
	prices PriceSource
}

func NewCalculator(prices PriceSource) *Calculator {
	return &Calculator{prices: prices}
}

// Value returns quantity × price for symbol. quantity is user input.
func (c *Calculator) Value(symbol, quantity string) (decimal.Decimal, error) {
	qty, err := ParseQuantity(quantity)
	if err != nil {
		return decimal.Zero, err
	}
	sym := provider.NormalizeSymbol(symbol)
	if sym == "" {
		return decimal.Zero, fmt.Errorf("%w: empty symbol", ErrInvalidInput)
	}
	q, ok := c.prices.Lookup(sym)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w for %s", ErrNoQuote, sym)
	}
	return qty.Mul(q.Price), nil
}

// Bounds on user quantities. Formatting a decimal costs time proportional to
// its exponent, so scientific notation is capped.
const (
	maxQuantityLen      = 64
	maxQuantityExponent = 30
)

// ParseQuantity parses a non-negative decimal quantity.
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidQuantity
	}
	if len(s) > maxQuantityLen {
		return decimal.Zero, fmt.Errorf("%w: longer than %d characters", ErrInvalidQuantity, maxQuantityLen)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	if e := d.Exponent(); e > maxQuantityExponent || e < -maxQuantityExponent {
		return decimal.Zero, fmt.Errorf("%w: %q is out of range", ErrInvalidQuantity, s)
	}
	return d, nil
}
