package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders a whole-rupee amount with Indian digit grouping,
// e.g. 1234567 -> "₹12,34,567".
func FormatINR(amount int64) string {
	return inr.Sprintf("₹%d", amount)
}
