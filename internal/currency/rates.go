package currency

// fallbackRates is the embedded rate table used when the exchange-rate
// service cannot be reached. Rates are expressed relative to USD.
var fallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"INR": 83.10,
	"NGN": 1530.00,
	"JPY": 149.50,
	"AUD": 1.52,
	"CAD": 1.36,
	"AED": 3.67,
	"SGD": 1.34,
}

// symbols maps currency codes to their display symbols.
// Codes without an entry fall back to "<CODE> ".
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"NGN": "₦",
	"JPY": "¥",
	"AUD": "A$",
	"CAD": "C$",
	"AED": "د.إ",
	"SGD": "S$",
}

// Symbol returns the display symbol for a currency code.
func Symbol(code string) string {
	if sym, ok := symbols[code]; ok {
		return sym
	}
	return code + " "
}
