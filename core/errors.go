package core

import (
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures into the statuses callers see.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindInvalidOperation
	KindRateLimited
	KindQuotaExceeded
	KindUpstream
	KindMalformedModelOutput
	KindTimeout
)

var kindNames = map[ErrorKind]string{
	KindInternal:             "Internal",
	KindBadRequest:           "BadRequest",
	KindUnauthorized:         "Unauthorized",
	KindForbidden:            "Forbidden",
	KindInvalidOperation:     "InvalidOperation",
	KindRateLimited:          "RateLimited",
	KindQuotaExceeded:        "QuotaExceeded",
	KindUpstream:             "UpstreamError",
	KindMalformedModelOutput: "MalformedModelOutput",
	KindTimeout:              "Timeout",
}

func (k ErrorKind) String() string {
	return kindNames[k]
}

// Status returns the HTTP status code of the kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindBadRequest, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExceeded:
		return http.StatusPaymentRequired
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
// Message is safe to show to callers; Err holds the detail that only gets logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, msg string, err ...error) *Error {
	e := &Error{Kind: kind, Message: msg}
	if len(err) > 0 {
		e.Err = err[0]
	}
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error found in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
