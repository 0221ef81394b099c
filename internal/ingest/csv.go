// Package ingest acquires and decodes historical rate datasets. The rate
// engine only ever sees decoded rows; whether they came from a local file, a
// zipped archive, or a remote blob is this package's concern.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

// naValues are the missing-rate sentinels used by the ECB reference dataset.
var naValues = map[string]bool{"": true, "N/A": true}

// Decode parses an ECB-style historical rates CSV:
//
//	Date,USD,JPY,BGN,...
//	2014-03-28,1.3759,140.9,N/A,...
//
// Empty header columns (the dataset has a trailing comma) are skipped. An
// unparseable date, or a rate field that is neither numeric nor a missing
// sentinel, yields a *rate.MalformedDataError with the 1-based line number.
func Decode(r io.Reader) ([]rate.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &rate.MalformedDataError{Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}
	if len(header) < 2 {
		return nil, &rate.MalformedDataError{Line: 1, Err: fmt.Errorf("header has no currency columns")}
	}
	codes := make([]string, len(header)-1)
	for i, code := range header[1:] {
		codes[i] = strings.TrimSpace(code)
	}

	var rows []rate.Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &rate.MalformedDataError{Line: line, Err: err}
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}

		date, err := time.Parse(time.DateOnly, record[0])
		if err != nil {
			return nil, &rate.MalformedDataError{Line: line, Err: err}
		}

		values := make(map[string]rate.Value, len(codes))
		for i, code := range codes {
			if code == "" || i+1 >= len(record) {
				continue
			}
			field := record[i+1]
			if naValues[field] {
				values[code] = rate.MissingValue()
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &rate.MalformedDataError{Line: line, Err: fmt.Errorf("rate %s: %w", code, err)}
			}
			values[code] = rate.KnownValue(v)
		}
		rows = append(rows, rate.Row{Date: date, Rates: values})
	}
	return rows, nil
}
