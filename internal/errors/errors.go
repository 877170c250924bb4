// Package errors provides the typed failures returned by the ledger.
// Every service-layer error is an *AppError so callers can tell a bad input
// from a shortfall, a dangling reference or a storage fault, and point the
// user at the field that caused it.
package errors

import (
	"errors"
	"net/http"
)

// Kind groups error codes into the ledger's failure taxonomy.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindReference         Kind = "reference"
	KindStorage           Kind = "storage"
	KindInternal          Kind = "internal"
)

// AppError represents a structured application error with an error code,
// human-readable message, the offending input field (if any), HTTP status
// code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Kind       Kind   `json:"-"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an *AppError with the same code, so derived
// errors (WithMessage, WithField, Wrap) still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) clone() *AppError {
	c := *e
	return &c
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	c := sentinel.clone()
	c.Internal = internal
	return c
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	c := sentinel.clone()
	c.Message = message
	return c
}

// WithField creates a new AppError attributed to an input field.
func WithField(sentinel *AppError, field, message string) *AppError {
	c := sentinel.clone()
	c.Field = field
	if message != "" {
		c.Message = message
	}
	return c
}

// AttachField returns err attributed to field when err is an *AppError
// without a field yet. Other errors are returned unchanged.
func AttachField(err error, field string) error {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Field != "" {
		return err
	}
	c := appErr.clone()
	c.Field = field
	return c
}

// KindOf classifies err. Errors that are not *AppError are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool        { return KindOf(err) == KindValidation }
func IsInsufficientFunds(err error) bool { return KindOf(err) == KindInsufficientFunds }
func IsReference(err error) bool         { return KindOf(err) == KindReference }
func IsStorage(err error) bool           { return KindOf(err) == KindStorage }

// Validation errors.
var (
	ErrInvalidInput           = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrSameAccountTransfer    = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Cannot transfer to the same account", Field: "to_account_id", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrUnsupportedBackup      = &AppError{Code: "UNSUPPORTED_BACKUP_VERSION", Message: "Backup schema version is not supported", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrInvalidBackup          = &AppError{Code: "INVALID_BACKUP", Message: "Backup file could not be read", Kind: KindValidation, StatusCode: http.StatusBadRequest}
)

// Funds errors.
var (
	ErrInsufficientFunds = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds", Field: "amount", Kind: KindInsufficientFunds, StatusCode: http.StatusUnprocessableEntity}
)

// Reference errors.
var (
	ErrAccountNotFound     = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", Kind: KindReference, StatusCode: http.StatusNotFound}
	ErrIncomeGroupNotFound = &AppError{Code: "INCOME_GROUP_NOT_FOUND", Message: "Income group not found", Kind: KindReference, StatusCode: http.StatusNotFound}
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", Kind: KindReference, StatusCode: http.StatusNotFound}
)

// Storage and internal errors.
var (
	ErrStorage        = &AppError{Code: "STORAGE_ERROR", Message: "The ledger could not be read or written", Kind: KindStorage, StatusCode: http.StatusInternalServerError}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", Kind: KindInternal, StatusCode: http.StatusInternalServerError}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", Kind: KindReference, StatusCode: http.StatusNotFound}
)
