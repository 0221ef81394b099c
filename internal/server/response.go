package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

func writeCSV(w http.ResponseWriter, code string, series []rate.RatePoint) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+code+".csv")
	w.WriteHeader(http.StatusOK)

	_, _ = fmt.Fprintln(w, "Currency,Date,Rate")
	for _, p := range series {
		_, _ = fmt.Fprintf(w, "%s,%s,%.6f\n", code, p.Date.Format(time.DateOnly), p.Rate)
	}
}
