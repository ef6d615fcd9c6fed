package model

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

const DefaultCurrencySymbol = "$"

var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "MXN", Symbol: "MX$", Name: "Mexican Peso"},
	{Code: "PEN", Symbol: "S/", Name: "Peruvian Sol"},
	{Code: "BRL", Symbol: "R$", Name: "Brazilian Real"},
	{Code: "COP", Symbol: "COL$", Name: "Colombian Peso"},
}

// CurrencySymbol falls back to "$" for unknown codes.
func CurrencySymbol(code string) string {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Symbol
		}
	}
	return DefaultCurrencySymbol
}

func IsSupportedCurrency(code string) bool {
	for _, c := range Currencies {
		if c.Code == code {
			return true
		}
	}
	return false
}
