package server

import (
	"net/http"

	"github.com/ahmethakanbesel/currency-api/internal/dataset"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(datasets *dataset.Service) http.Handler {
	return newMux(datasets)
}

func newMux(datasets *dataset.Service) http.Handler {
	h := &handler{datasets: datasets}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/currencies", h.listCurrencies)
	mux.HandleFunc("GET /api/v1/currencies/{code}", h.getCurrency)
	mux.HandleFunc("GET /api/v1/convert", h.convert)

	// Middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
