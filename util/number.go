package util

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale is the locale every user facing number is rendered in
var Locale = language.Turkish

// DefaultFraction keeps the locale pattern's fraction digits (at most three)
const DefaultFraction = -1

// FormatDecimal renders x with the digit grouping and decimal separator of Locale.
// maxFraction caps the fraction digits, trailing zeros are dropped.
// Pass DefaultFraction to keep the locale default.
func FormatDecimal(x float64, maxFraction int) string {
	var opts []number.Option
	if maxFraction >= 0 {
		opts = append(opts, number.MaxFractionDigits(maxFraction))
	}
	return message.NewPrinter(Locale).Sprint(number.Decimal(x, opts...))
}

// FormatFixed renders x like FormatDecimal but always with exactly digits fraction digits.
func FormatFixed(x float64, digits int) string {
	return message.NewPrinter(Locale).Sprint(number.Decimal(x, number.Scale(digits)))
}
