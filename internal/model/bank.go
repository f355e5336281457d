package model

import "github.com/shopspring/decimal"

// Currency is an ISO 4217 currency code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
	CurrencyINR Currency = "INR"
)

// MarketCapCurrencies lists every market cap currency in output column order.
var MarketCapCurrencies = []Currency{CurrencyUSD, CurrencyGBP, CurrencyEUR, CurrencyINR}

// RequiredCurrencies lists the conversion targets in output column order.
var RequiredCurrencies = []Currency{CurrencyGBP, CurrencyEUR, CurrencyINR}

// Column names shared by the CSV file, the workbook and the database table.
const (
	ColName         = "Name"
	ColMarketCapUSD = "MC_USD_Billion"
	ColMarketCapGBP = "MC_GBP_Billion"
	ColMarketCapEUR = "MC_EUR_Billion"
	ColMarketCapINR = "MC_INR_Billion"
)

// SourceFields are the fields scraped from the source table.
var SourceFields = []string{ColName, ColMarketCapUSD}

// Columns are the fields of an EnrichedRecord in output order.
var Columns = []string{ColName, ColMarketCapUSD, ColMarketCapGBP, ColMarketCapEUR, ColMarketCapINR}

// BankRecord is one bank scraped from the source table.
type BankRecord struct {
	Name         string
	MarketCapUSD decimal.Decimal // billions
}

// EnrichedRecord is a BankRecord with its market cap converted to the other currencies.
type EnrichedRecord struct {
	BankRecord
	MarketCapGBP decimal.Decimal
	MarketCapEUR decimal.Decimal
	MarketCapINR decimal.Decimal
}

// MarketCap returns the market cap in the given currency.
func (r EnrichedRecord) MarketCap(c Currency) (decimal.Decimal, bool) {
	switch c {
	case CurrencyUSD:
		return r.MarketCapUSD, true
	case CurrencyGBP:
		return r.MarketCapGBP, true
	case CurrencyEUR:
		return r.MarketCapEUR, true
	case CurrencyINR:
		return r.MarketCapINR, true
	default:
		return decimal.Zero, false
	}
}

// RateTable maps a currency to its conversion multiplier from USD.
type RateTable map[Currency]decimal.Decimal

// Rate returns the rate for c.
func (t RateTable) Rate(c Currency) (decimal.Decimal, bool) {
	r, ok := t[c]
	return r, ok
}
