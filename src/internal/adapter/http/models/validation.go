package models

import (
	"errors"
	"strings"

	"github.com/api-sage/ledger-engine/src/internal/commons"
)

// validationMessage drops the field prefix so callers can add their own.
func validationMessage(err error) string {
	var validationErr *commons.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return err.Error()
}

func validationFailure(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return commons.NewValidationError("", "%s", strings.Join(errs, "; "))
}
