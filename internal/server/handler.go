package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/currency-api/internal/apperror"
	"github.com/ahmethakanbesel/currency-api/internal/dataset"
	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

const dateFormat = "2006-01-02"

type handler struct {
	datasets *dataset.Service
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type currencyInfo struct {
	Code   string      `json:"code"`
	Bounds rate.Bounds `json:"bounds"`
}

func (h *handler) listCurrencies(w http.ResponseWriter, _ *http.Request) {
	conv := h.datasets.Converter()

	codes := conv.Currencies()
	out := make([]currencyInfo, 0, len(codes))
	for _, code := range codes {
		b, _ := conv.Bounds(code)
		out = append(out, currencyInfo{Code: code, Bounds: b})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getCurrency(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.PathValue("code"))
	conv := h.datasets.Converter()

	b, ok := conv.Bounds(code)
	if !ok {
		writeError(w, http.StatusNotFound, code+" is not a supported currency")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, code, h.datasets.Table().Series(code))
		return
	}
	writeJSON(w, http.StatusOK, currencyInfo{Code: code, Bounds: b})
}

type conversionResult struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Date      string  `json:"date"`
	Converted float64 `json:"converted"`
}

func (h *handler) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amountStr := q.Get("amount")
	if amountStr == "" {
		writeError(w, http.StatusBadRequest, "amount query parameter is required")
		return
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	from := strings.ToUpper(q.Get("from"))
	if from == "" {
		writeError(w, http.StatusBadRequest, "from query parameter is required")
		return
	}

	conv := h.datasets.Converter()

	to := strings.ToUpper(q.Get("to"))
	if to == "" {
		to = conv.Base()
	}

	// date accepts a plain date or a full timestamp; only the calendar date
	// component is used.
	var date time.Time
	if v := q.Get("date"); v != "" {
		date, err = time.Parse(dateFormat, v)
		if err != nil {
			date, err = time.Parse(time.RFC3339, v)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD or RFC 3339")
			return
		}
	}

	converted, err := conv.Convert(amount, from, to, date)
	if err != nil {
		ae := apperror.FromDomain(err)
		writeError(w, ae.HTTPStatus(), ae.Message())
		return
	}

	if date.IsZero() {
		date = time.Now()
	}
	writeJSON(w, http.StatusOK, conversionResult{
		Amount:    amount,
		From:      from,
		To:        to,
		Date:      date.Format(dateFormat),
		Converted: converted,
	})
}
