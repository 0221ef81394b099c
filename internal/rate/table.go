// Package rate implements the historical exchange-rate table and the
// conversion engine on top of it. All rates are expressed relative to a single
// base currency ("1 base unit = rate units of currency X on date D");
// converting between two non-base currencies always routes through the base.
package rate

import (
	"sort"
	"time"
)

// Value is a rate field as it appears in a dataset row: either a known rate or
// an explicitly missing entry. Source-specific sentinels ("", "N/A", SQL NULL)
// are converted to a Value at ingestion time so business logic never sees them.
type Value struct {
	Rate  float64
	Known bool
}

// KnownValue wraps a present rate.
func KnownValue(r float64) Value { return Value{Rate: r, Known: true} }

// MissingValue is a recorded-but-absent rate.
func MissingValue() Value { return Value{} }

// Row is one decoded dataset row: a calendar date plus the rate of each
// currency relative to the base on that date.
type Row struct {
	Date  time.Time
	Rates map[string]Value
}

// Bounds is the inclusive date range over which a currency has at least one
// known rate.
type Bounds struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

type point struct {
	date time.Time
	rate float64
}

// Table holds per-currency rate series relative to a single base currency,
// sorted by date for binary search. It is built once by NewTable and immutable
// afterwards, so concurrent readers need no locking. Refreshing data means
// building a new Table and swapping the pointer, never mutating one in use.
type Table struct {
	base   string
	series map[string][]point
	bounds map[string]Bounds
	codes  []string
}

// NewTable indexes the given rows. Rows may arrive in any order and are sorted
// by date before indexing; only known rates enter a currency's series. When
// the same (currency, date) pair occurs twice, the later-loaded row wins.
// Columns for the base currency itself are ignored: the base has rate 1.0 on
// every date by definition.
func NewTable(base string, rows []Row) *Table {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	series := make(map[string][]point)
	for _, row := range sorted {
		d := midnight(row.Date)
		for code, v := range row.Rates {
			if code == "" || code == base || !v.Known {
				continue
			}
			s := series[code]
			if n := len(s); n > 0 && s[n-1].date.Equal(d) {
				s[n-1].rate = v.Rate
				continue
			}
			series[code] = append(s, point{date: d, rate: v.Rate})
		}
	}

	bounds := make(map[string]Bounds, len(series)+1)
	var union Bounds
	for code, s := range series {
		b := Bounds{First: s[0].date, Last: s[len(s)-1].date}
		bounds[code] = b
		if union.First.IsZero() || b.First.Before(union.First) {
			union.First = b.First
		}
		if b.Last.After(union.Last) {
			union.Last = b.Last
		}
	}
	// The base is known wherever any other currency is known, so its bounds
	// span the union of all the others.
	if !union.First.IsZero() {
		bounds[base] = union
	}

	codes := make([]string, 0, len(series)+1)
	for code := range series {
		codes = append(codes, code)
	}
	codes = append(codes, base)
	sort.Strings(codes)

	return &Table{base: base, series: series, bounds: bounds, codes: codes}
}

// Base returns the currency all rates are expressed against.
func (t *Table) Base() string { return t.base }

// Currencies returns the supported currency codes, sorted, base included.
func (t *Table) Currencies() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Has reports whether code is a supported currency.
func (t *Table) Has(code string) bool {
	if code == t.base {
		return true
	}
	_, ok := t.series[code]
	return ok
}

// Bounds returns the known-rate date range for a currency.
func (t *Table) Bounds(code string) (Bounds, bool) {
	b, ok := t.bounds[code]
	return b, ok
}

// RatePoint is one known (date, rate) entry of a currency's series.
type RatePoint struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// Series returns a copy of the known-rate series for a currency, ascending by
// date. The base currency has no stored series.
func (t *Table) Series(code string) []RatePoint {
	s := t.series[code]
	if len(s) == 0 {
		return nil
	}
	out := make([]RatePoint, len(s))
	for i, p := range s {
		out[i] = RatePoint{Date: p.date, Rate: p.rate}
	}
	return out
}

// RateAt returns the units of code equal to one base unit on the given date.
// With nearest=false only an exact date match resolves; otherwise the rate of
// the chronologically closest known date is used, preferring the earlier date
// when two are equidistant.
func (t *Table) RateAt(code string, date time.Time, nearest bool) (float64, error) {
	if code == t.base {
		return 1.0, nil
	}
	s, ok := t.series[code]
	if !ok {
		return 0, &UnknownCurrencyError{Code: code}
	}

	d := midnight(date)
	i := sort.Search(len(s), func(i int) bool { return !s[i].date.Before(d) })
	if i < len(s) && s[i].date.Equal(d) {
		return s[i].rate, nil
	}
	if !nearest {
		return 0, &RateNotFoundError{Currency: code, Date: d}
	}

	switch {
	case i == 0:
		return s[0].rate, nil
	case i == len(s):
		return s[len(s)-1].rate, nil
	}
	if daysBetween(d, s[i].date) < daysBetween(s[i-1].date, d) {
		return s[i].rate, nil
	}
	return s[i-1].rate, nil
}

// surrounding returns the nearest known points strictly before and after d.
// Only called when d itself has no known rate.
func (t *Table) surrounding(code string, d time.Time) (prev, next *point) {
	s := t.series[code]
	i := sort.Search(len(s), func(i int) bool { return !s[i].date.Before(d) })
	if i > 0 {
		prev = &s[i-1]
	}
	if i < len(s) {
		next = &s[i]
	}
	return prev, next
}

// midnight truncates t to its calendar date, as seen in t's own location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
