// Package format turns quote fields into display strings.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder replaces a value that could not be fetched.
const Placeholder = "Err"

// NotDefined is shown for an absent supply.
const NotDefined = "Not defined"

// NotAvailable is shown for an absent percent change.
const NotAvailable = "n/a"

var printer = message.NewPrinter(language.English)

// Trend classifies a signed change.
type Trend int

const (
	Flat Trend = iota
	Up
	Down
)

// Classify returns Up for > 0, Down for < 0 and Flat for exactly 0 or absent.
func Classify(change decimal.NullDecimal) Trend {
	if !change.Valid {
		return Flat
	}
	switch change.Decimal.Sign() {
	case 1:
		return Up
	case -1:
		return Down
	}
	return Flat
}

// Tag is the highlight class: "positive", "negative" or "".
func (t Trend) Tag() string {
	switch t {
	case Up:
		return "positive"
	case Down:
		return "negative"
	}
	return ""
}

func (t Trend) Arrow() string {
	switch t {
	case Up:
		return "▲"
	case Down:
		return "▼"
	}
	return ""
}

func (t Trend) String() string {
	switch t {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "flat"
}

// Percent renders "2.50% ▲"; a flat change carries no arrow.
func Percent(change decimal.NullDecimal) string {
	if !change.Valid {
		return NotAvailable
	}
	s := change.Decimal.StringFixed(2) + "%"
	if arrow := Classify(change).Arrow(); arrow != "" {
		s += " " + arrow
	}
	return s
}

// PercentPlain renders "2.50%" without the arrow glyph.
func PercentPlain(change decimal.NullDecimal) string {
	if !change.Valid {
		return NotAvailable
	}
	return change.Decimal.StringFixed(2) + "%"
}

// Price renders "$1,234.56".
func Price(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + Grouped(d.Neg(), 2)
	}
	return "$" + Grouped(d, 2)
}

// Supply renders a grouped whole number, or NotDefined when absent.
func Supply(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotDefined
	}
	return Grouped(d.Decimal, 0)
}

// Volume renders billions and millions compactly ("1.00 B", "12.35 M").
func Volume(d decimal.Decimal) string {
	switch {
	case d.Abs().GreaterThanOrEqual(decimal.New(1, 9)):
		return d.Div(decimal.New(1, 9)).StringFixed(2) + " B"
	case d.Abs().GreaterThanOrEqual(decimal.New(1, 6)):
		return d.Div(decimal.New(1, 6)).StringFixed(2) + " M"
	}
	return Grouped(d, 2)
}

// Timestamp truncates an ISO-8601 string to seconds.
func Timestamp(raw string) string {
	if len(raw) > 19 {
		return raw[:19]
	}
	return raw
}

// Grouped renders d rounded to places with thousands separators.
func Grouped(d decimal.Decimal, places int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(places)
	intPart, frac, _ := strings.Cut(fixed, ".")

	whole := d.Round(places).Truncate(0)
	if whole.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
		intPart = printer.Sprintf("%d", whole.IntPart())
	}
	if frac != "" {
		return fmt.Sprintf("%s%s.%s", sign, intPart, frac)
	}
	return sign + intPart
}
