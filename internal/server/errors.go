package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/lead-search/internal/engine"
	"github.com/jonathan/lead-search/internal/export"
	"github.com/jonathan/lead-search/internal/extraction"
	syncjob "github.com/jonathan/lead-search/internal/sync"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var ev *ErrValidation
	if errors.As(err, &ev) {
		return http.StatusBadRequest
	}
	if errors.Is(err, syncjob.ErrJobNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, extraction.ErrNoDocuments) || errors.Is(err, export.ErrUnsupportedFormat) {
		return http.StatusBadRequest
	}

	switch engine.KindOf(err) {
	case engine.KindAuth:
		return http.StatusUnauthorized
	case engine.KindQuota:
		return http.StatusTooManyRequests
	case engine.KindPermission:
		return http.StatusForbidden
	case engine.KindFile:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns the client-facing message for an error. Engine errors
// carry clarified messages; everything else passes through as-is.
func userMessage(err error) string {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return ee.Message()
	}
	return err.Error()
}
