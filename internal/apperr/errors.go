// Package apperr defines the structured errors returned by the storefront core.
// Errors carry a machine-readable code and, where relevant, the offending field;
// presentation surfaces map them to user copy.
package apperr

import (
	stderrors "errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Code identifies a specific violated rule.
type Code string

const (
	CodeMissingField          Code = "MISSING_FIELD"
	CodeInvalidEmail          Code = "INVALID_EMAIL"
	CodeInvalidPhone          Code = "INVALID_PHONE"
	CodeInvalidPostalCode     Code = "INVALID_POSTAL_CODE"
	CodeInvalidPaymentMethod  Code = "INVALID_PAYMENT_METHOD"
	CodeInvalidShippingMethod Code = "INVALID_SHIPPING_METHOD"
	CodeInvalidStatus         Code = "INVALID_STATUS"
	CodeInvalidQuantityDelta  Code = "INVALID_QUANTITY_DELTA"
	CodeInvalidProduct        Code = "INVALID_PRODUCT"
	CodeInvalidSettings       Code = "INVALID_SETTINGS"

	CodeQuantityLimitExceeded   Code = "QUANTITY_LIMIT_EXCEEDED"
	CodeRemovalRequired         Code = "REMOVAL_REQUIRED"
	CodeEmptyCart               Code = "EMPTY_CART"
	CodeOrderNotFound           Code = "ORDER_NOT_FOUND"
	CodeItemNotFound            Code = "ITEM_NOT_FOUND"
	CodeProductNotFound         Code = "PRODUCT_NOT_FOUND"
	CodeInvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"
	CodeInvalidCredentials      Code = "INVALID_CREDENTIALS"
	CodeStorage                 Code = "STORAGE"
)

// Kind groups codes into the broad classes callers usually branch on.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindRule
	KindNotFound
	KindStorage
)

var kinds = map[Code]Kind{
	CodeMissingField:          KindValidation,
	CodeInvalidEmail:          KindValidation,
	CodeInvalidPhone:          KindValidation,
	CodeInvalidPostalCode:     KindValidation,
	CodeInvalidPaymentMethod:  KindValidation,
	CodeInvalidShippingMethod: KindValidation,
	CodeInvalidStatus:         KindValidation,
	CodeInvalidQuantityDelta:  KindValidation,
	CodeInvalidProduct:        KindValidation,
	CodeInvalidSettings:       KindValidation,

	CodeQuantityLimitExceeded:   KindRule,
	CodeRemovalRequired:         KindRule,
	CodeEmptyCart:               KindRule,
	CodeInvalidStatusTransition: KindRule,
	CodeInvalidCredentials:      KindRule,

	CodeOrderNotFound:   KindNotFound,
	CodeItemNotFound:    KindNotFound,
	CodeProductNotFound: KindNotFound,

	CodeStorage: KindStorage,
}

// Error is the structured error type of the core.
type Error struct {
	code  Code
	field string
	msg   string
	cause error
}

// New creates an error with the given code and an internal (non-UI) message.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func (e *Error) Error() string {
	s := string(e.code)
	if e.field != "" {
		s += "(" + e.field + ")"
	}
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

// Code returns the rule identifier.
func (e *Error) Code() Code { return e.code }

// Field returns the offending field name, if any.
func (e *Error) Field() string { return e.field }

// Kind returns the class of the error.
func (e *Error) Kind() Kind { return kinds[e.code] }

func (e *Error) Unwrap() error { return e.cause }

// Is matches on code, so errors.Is(err, ErrMissingField) holds for any field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code && (t.field == "" || t.field == e.field)
}

// WithField returns a copy of e bound to field.
func (e *Error) WithField(field string) *Error {
	return &Error{code: e.code, field: field, msg: e.msg, cause: e.cause}
}

// Withf returns a copy of e with a formatted internal message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{code: e.code, field: e.field, msg: fmt.Sprintf(format, args...), cause: e.cause}
}

var (
	ErrMissingField          = New(CodeMissingField, "")
	ErrInvalidEmail          = New(CodeInvalidEmail, "")
	ErrInvalidPhone          = New(CodeInvalidPhone, "")
	ErrInvalidPostalCode     = New(CodeInvalidPostalCode, "")
	ErrInvalidPaymentMethod  = New(CodeInvalidPaymentMethod, "")
	ErrInvalidShippingMethod = New(CodeInvalidShippingMethod, "")
	ErrInvalidStatus         = New(CodeInvalidStatus, "")
	ErrInvalidQuantityDelta  = New(CodeInvalidQuantityDelta, "")
	ErrInvalidProduct        = New(CodeInvalidProduct, "")
	ErrInvalidSettings       = New(CodeInvalidSettings, "")

	ErrQuantityLimitExceeded   = New(CodeQuantityLimitExceeded, "")
	ErrRemovalRequired         = New(CodeRemovalRequired, "")
	ErrEmptyCart               = New(CodeEmptyCart, "")
	ErrOrderNotFound           = New(CodeOrderNotFound, "")
	ErrItemNotFound            = New(CodeItemNotFound, "")
	ErrProductNotFound         = New(CodeProductNotFound, "")
	ErrInvalidStatusTransition = New(CodeInvalidStatusTransition, "")
	ErrInvalidCredentials      = New(CodeInvalidCredentials, "")
	ErrStorage                 = New(CodeStorage, "")
)

// MissingField reports a blank required field.
func MissingField(name string) *Error {
	return ErrMissingField.WithField(name)
}

// Storage wraps a persistence failure, annotating it with a stack trace.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{code: CodeStorage, msg: op, cause: pkgerrors.WithStack(err)}
}

// CodeOf extracts the code of err, or "" if err is not structured.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.code
	}
	return ""
}

// FieldOf extracts the field of err, or "".
func FieldOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.field
	}
	return ""
}

// IsKind reports whether err is a structured error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind() == k
	}
	return false
}
