package rate

import (
	"fmt"
	"time"
)

// UnknownCurrencyError reports a currency code that is absent from the loaded
// table. It is an invalid-input failure, distinct from missing data.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("%s is not a supported currency", e.Code)
}

// RateNotFoundError reports a valid currency with no resolvable rate for the
// requested date under the active fallback configuration.
type RateNotFoundError struct {
	Currency string
	Date     time.Time
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("%s has no rate for %s", e.Currency, e.Date.Format(time.DateOnly))
}

// MalformedDataError reports an ingestion-time parse failure: an unparseable
// date or a rate field that is neither numeric nor a missing sentinel. It is
// fatal to the load; a table is never built from partially parsed data.
type MalformedDataError struct {
	Line int
	Err  error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed rate data at line %d: %v", e.Line, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }
