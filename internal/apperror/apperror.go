// Package apperror carries coded errors across the HTTP boundary and maps the
// domain error taxonomy onto status codes.
package apperror

import (
	"errors"
	"net/http"

	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

type Code string

const (
	BadRequest Code = "BAD_REQUEST"
	NotFound   Code = "NOT_FOUND"
	Internal   Code = "INTERNAL"
)

type AppError struct {
	code    Code
	message string
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

func (e *AppError) Error() string   { return e.message }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromDomain maps a conversion error to a coded error. Unknown currencies are
// invalid input; a missing rate for an otherwise valid request is absent data,
// so callers can tell the two apart.
func FromDomain(err error) *AppError {
	var unknown *rate.UnknownCurrencyError
	var notFound *rate.RateNotFoundError
	switch {
	case errors.As(err, &unknown):
		return New(BadRequest, unknown.Error())
	case errors.As(err, &notFound):
		return New(NotFound, notFound.Error())
	default:
		return New(Internal, err.Error())
	}
}
