package dashboard

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stat card figures always render in US English regardless of the host locale.
var printer = message.NewPrinter(language.AmericanEnglish)

// Currency renders an amount as US dollars, e.g. "$1,234.00".
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	if amount < 0 {
		return "-" + printer.Sprintf("$%.2f", -amount)
	}
	return printer.Sprintf("$%.2f", amount)
}

// Number renders an integer with thousands separators.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// PercentLabel renders a whole percentage, e.g. "24%".
func PercentLabel(p int) string {
	return strconv.Itoa(p) + "%"
}
