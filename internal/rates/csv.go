// Package rates reads and writes the Currency,Rate exchange-rate table.
package rates

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankcap/internal/model"
)

// Header is the CSV header for exchange_rate.csv.
const Header = "Currency,Rate"

const (
	numFields   = 2
	colCurrency = 0
	colRate     = 1
)

// ReadRates reads exchange_rate.csv. When a currency repeats, the last row wins.
func ReadRates(r io.Reader) (model.RateTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading exchange rate CSV: %w", model.ErrParse, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: exchange rate CSV is empty", model.ErrParse)
	}
	if got := strings.Join(records[0], ","); got != Header {
		return nil, fmt.Errorf("%w: exchange rate header %q, want %q", model.ErrParse, got, Header)
	}

	table := make(model.RateTable, len(records)-1)
	for i, rec := range records[1:] {
		cur, rate, err := UnmarshalRate(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		table[cur] = rate
	}
	return table, nil
}

// WriteRates writes exchange_rate.csv with currencies in sorted order.
func WriteRates(w io.Writer, table model.RateTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	currencies := make([]model.Currency, 0, len(table))
	for c := range table {
		currencies = append(currencies, c)
	}
	slices.Sort(currencies)

	for i, c := range currencies {
		if err := cw.Write(MarshalRate(c, table[c])); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing rows: %w", err)
	}
	return nil
}

// MarshalRate converts one rate to a CSV row.
func MarshalRate(c model.Currency, rate decimal.Decimal) []string {
	row := make([]string, numFields)
	row[colCurrency] = string(c)
	row[colRate] = rate.String()
	return row
}

// UnmarshalRate converts a CSV row to a currency and its rate.
func UnmarshalRate(record []string) (model.Currency, decimal.Decimal, error) {
	if len(record) != numFields {
		return "", decimal.Zero, fmt.Errorf("%w: expected %d fields, got %d", model.ErrParse, numFields, len(record))
	}

	cur := model.Currency(strings.ToUpper(strings.TrimSpace(record[colCurrency])))
	if cur == "" {
		return "", decimal.Zero, fmt.Errorf("%w: empty currency code", model.ErrParse)
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(record[colRate]))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("%w: parsing rate %q: %w", model.ErrFormat, record[colRate], err)
	}
	return cur, rate, nil
}

// Load reads an exchange-rate file from disk.
func Load(path string) (model.RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening exchange rates: %w", model.ErrIO, err)
	}
	defer f.Close()

	table, err := ReadRates(f)
	if err != nil {
		return nil, fmt.Errorf("reading exchange rates %s: %w", path, err)
	}
	return table, nil
}

// Save writes an exchange-rate file to disk.
func Save(path string, table model.RateTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating exchange rates file: %w", model.ErrIO, err)
	}

	if err := WriteRates(f, table); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing exchange rates: %w", model.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing exchange rates file: %w", model.ErrIO, err)
	}
	return nil
}

// Starter returns the rate table written by `bankcap init`.
func Starter() model.RateTable {
	return model.RateTable{
		model.CurrencyEUR: decimal.RequireFromString("0.93"),
		model.CurrencyGBP: decimal.RequireFromString("0.8"),
		model.CurrencyINR: decimal.RequireFromString("82.95"),
	}
}
