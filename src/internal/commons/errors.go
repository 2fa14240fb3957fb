package commons

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("Record not found")
var ErrDuplicateRecord = errors.New("Record already exists")

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrSameAccount             = errors.New("source and destination account cannot be the same")
	ErrAccountNotActive        = errors.New("account is not active")
	ErrTransferNotFound        = errors.New("transfer not found")
	ErrTransferAlreadyExecuted = errors.New("transfer already executed")
	ErrRateNotFound            = errors.New("rate not found")
)

// ValidationError reports an unrecognised or malformed input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field string, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AccountCreationError wraps failures while opening an account, such as an
// invalid IBAN or a duplicate account number.
type AccountCreationError struct {
	Message string
	Err     error
}

func (e *AccountCreationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AccountCreationError) Unwrap() error {
	return e.Err
}

// TransferError is returned while creating or executing a transfer. Err
// carries one of the transfer sentinels so callers can use errors.Is.
type TransferError struct {
	Message string
	Err     error
}

func (e *TransferError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func NewTransferError(err error, format string, args ...any) *TransferError {
	return &TransferError{Message: fmt.Sprintf(format, args...), Err: err}
}

type NotFoundError struct {
	Message string
	ID      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrRecordNotFound
}

// ConversionError is returned when no rate is configured for a currency pair.
type ConversionError struct {
	From string
	To   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("no conversion rate configured from %s to %s", e.From, e.To)
}

func (e *ConversionError) Unwrap() error {
	return ErrRateNotFound
}
