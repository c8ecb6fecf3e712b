package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidIdentifier
	KindNotFound
	KindUnknownResponseType
	KindMalformedResponse
	KindUpstream
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "invalid_identifier"
	case KindNotFound:
		return "not_found"
	case KindUnknownResponseType:
		return "unknown_response_type"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUpstream:
		return "upstream"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Status is the HTTP status a failure of this kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindInvalidIdentifier, KindUnknownResponseType, KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func InvalidIdentifier(err error) *Error {
	return New(KindInvalidIdentifier, "", err)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func UnknownResponseType(got string) *Error {
	if got == "" {
		return New(KindUnknownResponseType, "AI response is missing response_type", nil)
	}
	return New(KindUnknownResponseType, fmt.Sprintf("invalid response_type %q: must be 'diet_plan', 'meal_logging' or 'conversation'", got), nil)
}

func MalformedResponse(msg string, err error) *Error {
	return New(KindMalformedResponse, msg, err)
}

func Upstream(err error) *Error {
	return New(KindUpstream, "AI provider request failed", err)
}

func BadRequest(err error) *Error {
	return New(KindBadRequest, "invalid request body", err)
}

// KindOf returns KindInternal for errors that carry no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Detail is the text shown to API callers. Internal failures get a generic
// message so driver errors do not leak.
func Detail(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal server error"
	}
	return e.Error()
}
