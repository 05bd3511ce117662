package failure

import (
	"errors"
	"net/http"
)

// Failure carries the HTTP status a handler should answer with. The optional
// cause keeps the domain error kind matchable with errors.Is.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) Unwrap() error {
	return e.cause
}

// Wrap returns a Failure with the given code whose message is derived from err
// and which matches both kind and err through errors.Is.
func Wrap(code int, kind, err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	if kind != nil && !errors.Is(err, kind) {
		msg = kind.Error() + ": " + msg
	}

	return &Failure{
		Code:    code,
		Message: msg,
		cause:   errors.Join(kind, err),
	}
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// GetCode returns the status of the outermost Failure in the chain, or 500.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
