package rate

import (
	"errors"
	"time"
)

// Converter resolves conversions against a shared Table. Fallback behavior is
// fixed at construction; several independently configured converters can share
// one table.
type Converter struct {
	table       *Table
	wrongDate   bool
	missingRate bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithWrongDateFallback substitutes the nearest known date's rate when the
// requested date has no data at all for a currency (before its first known
// rate, after its last, or on a gap day).
func WithWrongDateFallback() Option {
	return func(c *Converter) { c.wrongDate = true }
}

// WithMissingRateFallback interpolates a rate from the surrounding known rates
// when a date inside a currency's bounds has no recorded rate.
func WithMissingRateFallback() Option {
	return func(c *Converter) { c.missingRate = true }
}

// NewConverter creates a converter over t with the given options applied.
func NewConverter(t *Table, opts ...Option) *Converter {
	c := &Converter{table: t}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Base returns the base currency of the underlying table.
func (c *Converter) Base() string { return c.table.base }

// Currencies returns the supported currency codes, sorted.
func (c *Converter) Currencies() []string { return c.table.Currencies() }

// Bounds returns the known-rate date range for a currency.
func (c *Converter) Bounds(code string) (Bounds, bool) { return c.table.Bounds(code) }

// Convert converts amount from one currency to another using the rates of the
// given calendar date. Only the date component is used; a zero date means
// today. It returns *UnknownCurrencyError for codes absent from the table and
// *RateNotFoundError when no rate resolves under the configured fallbacks.
func (c *Converter) Convert(amount float64, from, to string, date time.Time) (float64, error) {
	if !c.table.Has(from) {
		return 0, &UnknownCurrencyError{Code: from}
	}
	if !c.table.Has(to) {
		return 0, &UnknownCurrencyError{Code: to}
	}
	if from == to {
		// Exact by contract, not merely a ratio of equal rates.
		return amount, nil
	}
	if date.IsZero() {
		date = time.Now()
	}
	d := midnight(date)

	rateFrom, err := c.resolveRate(from, d)
	if err != nil {
		return 0, err
	}
	rateTo, err := c.resolveRate(to, d)
	if err != nil {
		return 0, err
	}
	return amount * rateTo / rateFrom, nil
}

// resolveRate returns the units of currency equal to one base unit on d,
// applying the configured fallbacks. Interpolation takes precedence over the
// wrong-date fallback for dates inside the currency's bounds.
func (c *Converter) resolveRate(currency string, d time.Time) (float64, error) {
	if currency == c.table.base {
		return 1.0, nil
	}

	r, err := c.table.RateAt(currency, d, false)
	if err == nil {
		return r, nil
	}
	var notFound *RateNotFoundError
	if !errors.As(err, &notFound) {
		return 0, err
	}

	if c.missingRate {
		if b, ok := c.table.Bounds(currency); ok && d.After(b.First) && d.Before(b.Last) {
			return c.interpolate(currency, d)
		}
	}
	if c.wrongDate {
		return c.table.RateAt(currency, d, true)
	}
	return 0, err
}

// interpolate fills an in-bounds gap with the mean of the nearest known rates
// on each side, each weighted by the opposite side's distance in days so that
// the rate closer in time contributes more.
func (c *Converter) interpolate(currency string, d time.Time) (float64, error) {
	prev, next := c.table.surrounding(currency, d)
	switch {
	case prev != nil && next != nil:
		dPrev := float64(daysBetween(prev.date, d))
		dNext := float64(daysBetween(d, next.date))
		return (prev.rate*dNext + next.rate*dPrev) / (dPrev + dNext), nil
	case prev != nil:
		return prev.rate, nil
	case next != nil:
		return next.rate, nil
	}
	return 0, &RateNotFoundError{Currency: currency, Date: d}
}
