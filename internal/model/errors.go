package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure that aborts a run wraps exactly one of these.
var (
	ErrFetch       = errors.New("fetch failed")
	ErrParse       = errors.New("parse failed")
	ErrFormat      = errors.New("bad number format")
	ErrMissingRate = errors.New("missing exchange rate")
	ErrInvalidRate = errors.New("invalid exchange rate")
	ErrIO          = errors.New("i/o failed")
	ErrStorage     = errors.New("storage failed")
	ErrQuery       = errors.New("query failed")
)

// MissingRateError names the currency absent from a rate table.
type MissingRateError struct {
	Currency Currency
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("missing exchange rate for %s", e.Currency)
}

// Is makes errors.Is(err, ErrMissingRate) match.
func (e *MissingRateError) Is(target error) bool {
	return target == ErrMissingRate
}
