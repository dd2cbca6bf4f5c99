package content

import (
	"errors"
	"fmt"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/permissions"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/workflow"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNotFound       = errors.New("content: not found")
	ErrValidation     = errors.New("content: validation failed")
	ErrStore          = errors.New("content: store failure")
	ErrStatusConflict = errors.New("content: status changed concurrently")
	ErrTooManyItems   = errors.New("content: too many items in bulk request")

	errDuplicateID = errors.New("content: duplicate id")
)

// NotFoundError reports a lookup that matched nothing.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "content"
	}
	if e.Key == "" {
		return resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError groups field errors produced by ozzo-validation rules or
// metadata schema checks.
type ValidationError struct {
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	return "content: validation failed: " + e.Errors.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Errors: validation.Errors{field: validation.NewError(code, message)}}
}

func asValidationError(err error) *ValidationError {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Errors: fields}
	}
	return &ValidationError{Errors: validation.Errors{"_": err}}
}

// StoreError wraps a persistence failure. Op names the store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "content: store " + e.Op + " failed"
	}
	return fmt.Sprintf("content: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// ErrorKind classifies errors returned by the service so transports and the
// bulk coordinator can map them without string matching.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindNotFound          ErrorKind = "not_found"
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindValidation        ErrorKind = "validation"
	KindStore             ErrorKind = "store"
)

// KindOf returns the kind of err. Unrecognised errors count as store errors.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, permissions.ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, workflow.ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrValidation), errors.Is(err, workflow.ErrReasonRequired), errors.Is(err, ErrTooManyItems):
		return KindValidation
	default:
		return KindStore
	}
}
