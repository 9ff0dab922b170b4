package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure a service operation can return.
type ErrorKind int

const (
	// KindValidation: missing or malformed input (target <= 0, missing ids).
	KindValidation ErrorKind = iota
	// KindNotFound: a referenced entity does not exist.
	KindNotFound
	// KindConflict: an invariant would be violated (duplicate RFID, double
	// machine/step assignment, freeing a machine with pending tasks).
	KindConflict
	// KindTransient: store timeout or serialization conflict; the caller may
	// retry the whole operation.
	KindTransient
)

// ServiceError carries one of the four error kinds plus a user-facing
// message. Store driver details are wrapped as the cause and logged, never
// exposed in responses.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func ErrValidation(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func ErrNotFound(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ErrConflict(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func ErrTransient(cause error) error {
	return &ServiceError{Kind: KindTransient, Message: "storage temporarily unavailable, retry", Cause: cause}
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == kind
}

// StatusCode maps a service error to the HTTP status controllers respond
// with. Unknown errors map to 500.
func StatusCode(err error) int {
	var se *ServiceError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
