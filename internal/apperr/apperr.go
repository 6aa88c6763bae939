// Package apperr carries the coded errors reported to callers of the
// request services. Every error has a Kind that selects how the caller is
// told about it and a stable machine-readable Code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindConflict     Kind = "CONFLICT"
	KindNotFound     Kind = "NOT_FOUND"
	KindFatalStorage Kind = "FATAL_STORAGE"
)

const CodeInternal = "INTERNAL_ERROR"

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and code, so sentinel
// values built with the constructors below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

func Validation(code string) *Error {
	return &Error{Kind: KindValidation, Code: code}
}

func Conflict(code string) *Error {
	return &Error{Kind: KindConflict, Code: code}
}

func NotFound(code string) *Error {
	return &Error{Kind: KindNotFound, Code: code}
}

func Storage(code string, err error) *Error {
	return &Error{Kind: KindFatalStorage, Code: code, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
