package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankcap/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRates() model.RateTable {
	return model.RateTable{
		model.CurrencyGBP: dec("0.8"),
		model.CurrencyEUR: dec("0.93"),
		model.CurrencyINR: dec("82.95"),
	}
}

func TestTransform_SingleRecord(t *testing.T) {
	records := []model.BankRecord{{Name: "Bank A", MarketCapUSD: dec("100.0")}}

	got, err := Transform(records, testRates())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Bank A", got[0].Name)
	assert.True(t, dec("80.0").Equal(got[0].MarketCapGBP), "GBP %s", got[0].MarketCapGBP)
	assert.True(t, dec("93.0").Equal(got[0].MarketCapEUR), "EUR %s", got[0].MarketCapEUR)
	assert.True(t, dec("8295.0").Equal(got[0].MarketCapINR), "INR %s", got[0].MarketCapINR)
}

func TestTransform_RoundsToTwoPlaces(t *testing.T) {
	records := []model.BankRecord{{Name: "JPMorgan Chase", MarketCapUSD: dec("432.92")}}

	got, err := Transform(records, testRates())
	require.NoError(t, err)

	assert.Equal(t, "346.34", got[0].MarketCapGBP.StringFixed(2))
	assert.Equal(t, "402.62", got[0].MarketCapEUR.StringFixed(2))
	assert.Equal(t, "35910.71", got[0].MarketCapINR.StringFixed(2))
}

func TestTransform_PreservesCountAndOrder(t *testing.T) {
	var records []model.BankRecord
	for i, usd := range []string{"432.92", "231.52", "194.56", "160.68", "157.91"} {
		records = append(records, model.BankRecord{Name: string(rune('A' + i)), MarketCapUSD: dec(usd)})
	}

	got, err := Transform(records, testRates())
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i], got[i].BankRecord)
		assert.True(t, Convert(records[i].MarketCapUSD, dec("0.8")).Equal(got[i].MarketCapGBP))
		assert.True(t, Convert(records[i].MarketCapUSD, dec("0.93")).Equal(got[i].MarketCapEUR))
		assert.True(t, Convert(records[i].MarketCapUSD, dec("82.95")).Equal(got[i].MarketCapINR))
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	records := []model.BankRecord{{Name: "Bank A", MarketCapUSD: dec("100")}}
	before := append([]model.BankRecord(nil), records...)

	_, err := Transform(records, testRates())
	require.NoError(t, err)
	assert.Equal(t, before, records)
}

func TestTransform_Empty(t *testing.T) {
	got, err := Transform(nil, testRates())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransform_MissingRate(t *testing.T) {
	for _, c := range model.RequiredCurrencies {
		t.Run(string(c), func(t *testing.T) {
			rates := testRates()
			delete(rates, c)

			_, err := Transform([]model.BankRecord{{Name: "Bank A", MarketCapUSD: dec("1")}}, rates)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrMissingRate)

			var mre *model.MissingRateError
			require.ErrorAs(t, err, &mre)
			assert.Equal(t, c, mre.Currency)
		})
	}
}

func TestTransform_NonPositiveRate(t *testing.T) {
	rates := testRates()
	rates[model.CurrencyEUR] = dec("0")

	_, err := Transform(nil, rates)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidRate)
	assert.Contains(t, err.Error(), "EUR")
}

func TestTransform_ExtraRatesIgnored(t *testing.T) {
	rates := testRates()
	rates["JPY"] = dec("147.1")

	got, err := Transform([]model.BankRecord{{Name: "Bank A", MarketCapUSD: dec("100")}}, rates)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		usd, rate, want string
	}{
		{"100", "0.8", "80"},
		{"148.90", "0.8", "119.12"},
		{"0.125", "1", "0.12"}, // exact tie rounds to even
		{"0.375", "1", "0.38"},
		{"1.005", "1", "1"}, // 1.005 is stored just below the tie
		{"136.81", "82.95", "11348.39"},
	}
	for _, tt := range tests {
		got := Convert(dec(tt.usd), dec(tt.rate))
		assert.True(t, dec(tt.want).Equal(got), "Convert(%s, %s) = %s, want %s", tt.usd, tt.rate, got, tt.want)
	}
}
