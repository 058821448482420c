package dashboard

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency applies when a contract does not name its currency.
const DefaultCurrency = "INR"

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Grouping is always en-US regardless of the currency shown.
var amountPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders value with the symbol for code, rounded to whole
// units with en-US thousands grouping. Unknown codes are printed verbatim.
func FormatCurrency(value float64, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return symbol + amountPrinter.Sprintf("%d", int64(math.Round(value)))
}

// FormatAmount is FormatCurrency for an optional amount; nil renders as zero.
func FormatAmount(value *float64, code string) string {
	if value == nil {
		return FormatCurrency(0, code)
	}
	return FormatCurrency(*value, code)
}
