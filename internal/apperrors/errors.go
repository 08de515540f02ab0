package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers; it maps onto HTTP statuses in the handlers.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindIntegrity  Kind = "integrity"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

// Stable error codes surfaced to API clients.
const (
	CodeInvalidInput          = "INVALID_INPUT"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeIntegrity             = "INTEGRITY"
	CodeDuplicate             = "DUPLICATE"
	CodeDuplicateCode         = "DUPLICATE_CODE"
	CodeInvalidParent         = "INVALID_PARENT"
	CodeTypeMismatch          = "TYPE_MISMATCH"
	CodeCircularParent        = "CIRCULAR_PARENT"
	CodeMaxDepthExceeded      = "MAX_DEPTH_EXCEEDED"
	CodeInvalidSubType        = "INVALID_SUBTYPE"
	CodeInvalidCurrency       = "INVALID_CURRENCY"
	CodeHasActiveChildren     = "HAS_ACTIVE_CHILDREN"
	CodeTooFewLines           = "TOO_FEW_LINES"
	CodeInvalidLine           = "INVALID_LINE"
	CodeUnbalanced            = "UNBALANCED"
	CodeUnknownAccount        = "UNKNOWN_ACCOUNT"
	CodeInactiveAccount       = "INACTIVE_ACCOUNT"
	CodeAccountNotFound       = "ACCOUNT_NOT_FOUND"
	CodeNotDraft              = "NOT_DRAFT"
	CodeNotPosted             = "NOT_POSTED"
	CodeReversalNotReversible = "REVERSAL_NOT_REVERSIBLE"
	CodeForbidden             = "FORBIDDEN"
	CodeLedgerInconsistent    = "LEDGER_INCONSISTENT"
	CodeInternal              = "INTERNAL"
)

// AppError is the error type returned across service boundaries.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError by kind, and by code when the target carries one.
// This lets errors.Is(err, ErrConflict) match every conflict.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels.
var (
	ErrValidation = &AppError{Kind: KindValidation, Message: "validation error"}
	ErrConflict   = &AppError{Kind: KindConflict, Message: "conflict"}
	ErrNotFound   = &AppError{Kind: KindNotFound, Message: "resource not found"}
	ErrIntegrity  = &AppError{Kind: KindIntegrity, Message: "integrity violation"}
	ErrForbidden  = &AppError{Kind: KindForbidden, Message: "forbidden"}
	ErrInternal   = &AppError{Kind: KindInternal, Message: "internal error"}
)

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = &AppError{Kind: KindConflict, Code: CodeDuplicate, Message: "resource already exists"}

// Code sentinels for the ledger lifecycle, usable with errors.Is.
var (
	ErrNotDraft  = &AppError{Kind: KindConflict, Code: CodeNotDraft, Message: "journal entry is not a draft"}
	ErrNotPosted = &AppError{Kind: KindConflict, Code: CodeNotPosted, Message: "journal entry is not posted"}
)

// New builds an AppError.
func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Wrap builds an AppError around a cause.
func Wrap(kind Kind, code, message string, err error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

// Validationf returns a validation error with a formatted message.
func Validationf(code, format string, args ...any) *AppError {
	return New(KindValidation, code, fmt.Sprintf(format, args...))
}

// Conflictf returns a conflict error with a formatted message.
func Conflictf(code, format string, args ...any) *AppError {
	return New(KindConflict, code, fmt.Sprintf(format, args...))
}

// NotFoundf returns a not-found error with a formatted message.
func NotFoundf(code, format string, args ...any) *AppError {
	return New(KindNotFound, code, fmt.Sprintf(format, args...))
}

// Integrityf returns an integrity error with a formatted message.
func Integrityf(code, format string, args ...any) *AppError {
	return New(KindIntegrity, code, fmt.Sprintf(format, args...))
}

// Forbiddenf returns a forbidden error with a formatted message.
func Forbiddenf(format string, args ...any) *AppError {
	return New(KindForbidden, CodeForbidden, fmt.Sprintf(format, args...))
}

// NewInternal wraps an unexpected failure.
func NewInternal(message string, err error) *AppError {
	return Wrap(KindInternal, CodeInternal, message, err)
}

// KindOf returns the kind of the first AppError in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var defaultCodes = map[Kind]string{
	KindValidation: CodeInvalidInput,
	KindConflict:   CodeConflict,
	KindNotFound:   CodeNotFound,
	KindIntegrity:  CodeIntegrity,
	KindForbidden:  CodeForbidden,
	KindInternal:   CodeInternal,
}

// CodeOf returns the code of the first AppError in the chain. An AppError without a code
// yields the generic code of its kind; anything else yields CodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return CodeInternal
	}
	if appErr.Code != "" {
		return appErr.Code
	}
	if code, ok := defaultCodes[appErr.Kind]; ok {
		return code
	}
	return CodeInternal
}
