// Package loader writes the enriched dataset to flat files.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankcap/internal/model"
)

// Header is the CSV header for the output file. The first column is the
// unnamed row index.
const Header = ",Name,MC_USD_Billion,MC_GBP_Billion,MC_EUR_Billion,MC_INR_Billion"

const (
	numFields = 6
	colIndex  = 0
	colName   = 1
	colUSD    = 2
	colGBP    = 3
	colEUR    = 4
	colINR    = 5
)

// LoadToFile writes records to path, replacing any existing file and creating
// parent directories as needed.
func LoadToFile(records []model.EnrichedRecord, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating output dir: %w", model.ErrIO, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", model.ErrIO, path, err)
	}

	if err := WriteRecords(f, records); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %w", model.ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", model.ErrIO, path, err)
	}
	return nil
}

// ReadFile reads a file written by LoadToFile.
func ReadFile(path string) ([]model.EnrichedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", model.ErrIO, path, err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// WriteRecords writes the header and one indexed row per record.
func WriteRecords(w io.Writer, records []model.EnrichedRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(i, rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing rows: %w", err)
	}
	return nil
}

// ReadRecords parses output written by WriteRecords.
func ReadRecords(r io.Reader) ([]model.EnrichedRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading banks CSV: %w", model.ErrParse, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	if got := strings.Join(rows[0], ","); got != Header {
		return nil, fmt.Errorf("%w: header %q, want %q", model.ErrParse, got, Header)
	}

	var records []model.EnrichedRecord
	for i, row := range rows[1:] {
		idx, rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if idx != i {
			return nil, fmt.Errorf("%w: row %d: index %d out of sequence", model.ErrParse, i+2, idx)
		}
		records = append(records, rec)
	}
	return records, nil
}

// MarshalRecord converts a record and its zero-based index to a CSV row.
func MarshalRecord(index int, rec model.EnrichedRecord) []string {
	row := make([]string, numFields)
	row[colIndex] = strconv.Itoa(index)
	row[colName] = rec.Name
	for i, c := range model.MarketCapCurrencies {
		v, _ := rec.MarketCap(c)
		row[colUSD+i] = FormatNumber(v)
	}
	return row
}

// UnmarshalRecord converts a CSV row to its index and record.
func UnmarshalRecord(row []string) (int, model.EnrichedRecord, error) {
	if len(row) != numFields {
		return 0, model.EnrichedRecord{}, fmt.Errorf("%w: expected %d fields, got %d", model.ErrParse, numFields, len(row))
	}

	idx, err := strconv.Atoi(row[colIndex])
	if err != nil {
		return 0, model.EnrichedRecord{}, fmt.Errorf("%w: parsing index %q: %w", model.ErrFormat, row[colIndex], err)
	}

	var vals [4]decimal.Decimal
	for i, col := range []int{colUSD, colGBP, colEUR, colINR} {
		vals[i], err = decimal.NewFromString(row[col])
		if err != nil {
			return 0, model.EnrichedRecord{}, fmt.Errorf("%w: parsing %s %q: %w", model.ErrFormat, model.Columns[col-1], row[col], err)
		}
	}

	return idx, model.EnrichedRecord{
		BankRecord:   model.BankRecord{Name: row[colName], MarketCapUSD: vals[0]},
		MarketCapGBP: vals[1],
		MarketCapEUR: vals[2],
		MarketCapINR: vals[3],
	}, nil
}

// FormatNumber renders d the way a float column is written by pandas:
// shortest form, always with a fractional part ("80.0", "346.34").
func FormatNumber(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
