package service

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidJSON          = "INVALID_JSON"
	CodeMissingData          = "MISSING_DATA"
	CodeTypeMismatch         = "TYPE_MISMATCH"
	CodeIDMismatch           = "ID_MISMATCH"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeConstraintViolation  = "CONSTRAINT_VIOLATION"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Fields  []FieldError
	Err     error
}

// FieldError is one violated rule on one attribute; Message is the full sentence shown to clients.
type FieldError struct {
	Field   string
	Message string
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{Key: key, Payload: payload}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

func NewNotFound(resource string, id string) *BusinessError {
	return NewBusinessError(CodeNotFound, "Record not found",
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewValidationError(fields ...FieldError) *BusinessError {
	busErr := NewBusinessError(CodeValidationFailed, "Validation failed")
	busErr.Fields = fields
	return busErr
}

func Invalid(field, message string) FieldError {
	return FieldError{Field: field, Message: message}
}

func NewUnauthorized(reason string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, "Unauthorized", ToDetail("reason", reason))
}

func NewConstraintViolation(err error) *BusinessError {
	busErr := NewBusinessError(CodeConstraintViolation, "Database constraint violation")
	busErr.Err = err
	return busErr
}

// AsBusinessError unwraps err into a *BusinessError when it is one.
func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}
