package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code classifies a service failure. Controllers map codes to HTTP statuses;
// services never see the transport.
type Code int

const (
	CodeBadRequest Code = iota + 1
	CodeNotFound
	CodeConflict
	CodeForbidden
	CodeUnauthorized
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func badRequestf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func unauthorizedf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the classification of err, or 0 for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// validationError flattens model validation messages into one bad request.
func validationError(msgs map[string]string) error {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, msg)
	}
	sort.Strings(parts)
	return badRequestf("%s", strings.Join(parts, "; "))
}
