// Package transform converts USD market caps into the other reporting currencies.
package transform

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankcap/internal/model"
)

// Places is the number of decimal places kept in converted values.
const Places = 2

// Validate checks that rates has a positive entry for every required currency.
func Validate(rates model.RateTable) error {
	for _, c := range model.RequiredCurrencies {
		r, ok := rates.Rate(c)
		if !ok {
			return &model.MissingRateError{Currency: c}
		}
		if !r.IsPositive() {
			return fmt.Errorf("%w: %s rate %s must be positive", model.ErrInvalidRate, c, r)
		}
	}
	return nil
}

// Transform returns a new dataset with GBP, EUR and INR market caps added.
// The input slice is not modified.
func Transform(records []model.BankRecord, rates model.RateTable) ([]model.EnrichedRecord, error) {
	if err := Validate(rates); err != nil {
		return nil, err
	}

	gbp := rates[model.CurrencyGBP]
	eur := rates[model.CurrencyEUR]
	inr := rates[model.CurrencyINR]

	out := make([]model.EnrichedRecord, len(records))
	for i, rec := range records {
		out[i] = model.EnrichedRecord{
			BankRecord:   rec,
			MarketCapGBP: Convert(rec.MarketCapUSD, gbp),
			MarketCapEUR: Convert(rec.MarketCapUSD, eur),
			MarketCapINR: Convert(rec.MarketCapUSD, inr),
		}
	}
	return out, nil
}

// Convert multiplies usd by rate in float64 and rounds half-to-even to Places,
// scaling by 10^Places before rounding. This reproduces numpy.round row for row,
// including cases where the float product lands just off a tie.
func Convert(usd, rate decimal.Decimal) decimal.Decimal {
	scale := math.Pow10(Places)
	product := usd.InexactFloat64() * rate.InexactFloat64()
	rounded := math.RoundToEven(product*scale) / scale
	return decimal.NewFromFloat(rounded).Round(Places)
}
