package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/currency-api/internal/dataset"
	"github.com/ahmethakanbesel/currency-api/internal/ingest"
	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

type stubSource struct {
	rows []rate.Row
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Rows(context.Context) ([]rate.Row, error) {
	return s.rows, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setupHandler(t *testing.T, opts ...rate.Option) http.Handler {
	t.Helper()

	rows := []rate.Row{
		{Date: day(2014, 3, 29), Rates: map[string]rate.Value{"USD": rate.KnownValue(2), "AAA": rate.MissingValue()}},
		{Date: day(2014, 3, 27), Rates: map[string]rate.Value{"USD": rate.KnownValue(6), "AAA": rate.KnownValue(4)}},
		{Date: day(2014, 3, 23), Rates: map[string]rate.Value{"USD": rate.KnownValue(18)}},
	}
	svc := dataset.NewService("EUR", []ingest.Source{stubSource{rows: rows}},
		dataset.WithFallbacks(opts...),
	)
	require.NoError(t, svc.Start(context.Background()))
	return NewHandler(svc)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data
}

func TestHealth(t *testing.T) {
	rec := get(t, setupHandler(t), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListCurrencies(t *testing.T) {
	rec := get(t, setupHandler(t), "/api/v1/currencies")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[[]currencyInfo](t, rec)
	require.Len(t, data, 3)
	require.Equal(t, "AAA", data[0].Code)
	require.Equal(t, "EUR", data[1].Code)
	require.Equal(t, "USD", data[2].Code)

	// Base bounds span the union of the others.
	require.Equal(t, day(2014, 3, 23), data[1].Bounds.First)
	require.Equal(t, day(2014, 3, 29), data[1].Bounds.Last)
}

func TestGetCurrency(t *testing.T) {
	h := setupHandler(t)

	rec := get(t, h, "/api/v1/currencies/usd")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData[currencyInfo](t, rec)
	require.Equal(t, "USD", data.Code)
	require.Equal(t, day(2014, 3, 23), data.Bounds.First)

	rec = get(t, h, "/api/v1/currencies/ZZZ")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCurrency_CSV(t *testing.T) {
	rec := get(t, setupHandler(t), "/api/v1/currencies/USD?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4) // header + three known rates
	require.Equal(t, "Currency,Date,Rate", lines[0])
	require.Equal(t, "USD,2014-03-23,18.000000", lines[1])
}

func TestConvert(t *testing.T) {
	h := setupHandler(t)

	rec := get(t, h, "/api/v1/convert?amount=10&from=EUR&to=USD&date=2014-03-27")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[conversionResult](t, rec)
	require.InDelta(t, 60, data.Converted, 1e-9)
	require.Equal(t, "EUR", data.From)
	require.Equal(t, "USD", data.To)
	require.Equal(t, "2014-03-27", data.Date)
}

func TestConvert_DefaultsToBase(t *testing.T) {
	rec := get(t, setupHandler(t), "/api/v1/convert?amount=12&from=USD&date=2014-03-29")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[conversionResult](t, rec)
	require.Equal(t, "EUR", data.To)
	require.InDelta(t, 6, data.Converted, 1e-9)
}

func TestConvert_TimestampDate(t *testing.T) {
	rec := get(t, setupHandler(t), "/api/v1/convert?amount=10&from=EUR&to=USD&date=2014-03-27T15:04:05Z")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[conversionResult](t, rec)
	require.InDelta(t, 60, data.Converted, 1e-9)
}

func TestConvert_WithFallbacks(t *testing.T) {
	h := setupHandler(t, rate.WithWrongDateFallback(), rate.WithMissingRateFallback())

	// In-bounds gap interpolates: (6*1 + 2*1) / 2 = 4.
	rec := get(t, h, "/api/v1/convert?amount=10&from=EUR&to=USD&date=2014-03-28")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData[conversionResult](t, rec)
	require.InDelta(t, 40, data.Converted, 1e-9)
}

func TestConvert_Errors(t *testing.T) {
	h := setupHandler(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"missing amount", "/api/v1/convert?from=EUR&to=USD", http.StatusBadRequest},
		{"bad amount", "/api/v1/convert?amount=abc&from=EUR", http.StatusBadRequest},
		{"missing from", "/api/v1/convert?amount=10", http.StatusBadRequest},
		{"bad date", "/api/v1/convert?amount=10&from=EUR&date=28/03/2014", http.StatusBadRequest},
		{"unknown currency", "/api/v1/convert?amount=10&from=ZZZ&date=2014-03-27", http.StatusBadRequest},
		{"no rate without fallback", "/api/v1/convert?amount=10&from=EUR&to=USD&date=2014-03-28", http.StatusNotFound},
		{"missing sentinel without fallback", "/api/v1/convert?amount=10&from=EUR&to=AAA&date=2014-03-29", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path)
			require.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}
