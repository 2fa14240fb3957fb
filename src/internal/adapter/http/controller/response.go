package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/commons"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respond(w http.ResponseWriter, r *http.Request, status int, payload any, start time.Time) {
	writeJSON(w, status, payload)
	logResponse(r, status, payload, start)
}

// fail logs err and writes the error envelope with the status err maps to.
func fail[T any](w http.ResponseWriter, r *http.Request, message string, err error, start time.Time) {
	logError(r, err, nil)
	respond(w, r, statusFor(err), commons.ErrorResponse[T](message, err.Error()), start)
}

// statusFor maps the error taxonomy onto HTTP statuses. Sentinels are checked
// before wrapper types so a duplicate inside an AccountCreationError is a
// conflict rather than a rejection.
func statusFor(err error) int {
	var validationErr *commons.ValidationError
	var notFoundErr *commons.NotFoundError
	var creationErr *commons.AccountCreationError
	var transferErr *commons.TransferError
	var conversionErr *commons.ConversionError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr),
		errors.Is(err, commons.ErrRecordNotFound),
		errors.Is(err, commons.ErrAccountNotFound),
		errors.Is(err, commons.ErrTransferNotFound):
		return http.StatusNotFound
	case errors.Is(err, commons.ErrDuplicateRecord),
		errors.Is(err, commons.ErrTransferAlreadyExecuted):
		return http.StatusConflict
	case errors.As(err, &creationErr),
		errors.As(err, &transferErr),
		errors.As(err, &conversionErr):
		return http.StatusNotAcceptable
	default:
		return http.StatusInternalServerError
	}
}
