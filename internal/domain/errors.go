package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure that can reach a client.
type ErrorKind int

const (
	ValidationError ErrorKind = iota + 1
	NotFoundError
	NetworkError
	HTTPStatusError
	ParseError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case NotFoundError:
		return "not_found"
	case NetworkError:
		return "network"
	case HTTPStatusError:
		return "http_status"
	case ParseError:
		return "parse"
	default:
		return "unknown"
	}
}

// Client-facing messages. These are the only strings that leave the process.
const (
	MsgUnknownService  = "unknown service key"
	MsgMissingService  = "missing service key"
	MsgCustomDisabled  = "custom service URLs are not enabled"
	MsgTimeout         = "timed out fetching capabilities document"
	MsgUnreachable     = "could not reach capabilities service"
	MsgBodyTooLarge    = "capabilities document exceeds size limit"
	MsgFetchCancelled  = "capabilities request was cancelled"
	msgParseTemplate   = "could not parse capabilities document for %s"
	msgStatusTemplate  = "capabilities service responded with HTTP %d"
	msgUnknownFallback = "could not fetch capabilities document"
)

// Error is a classified failure. Message is safe to show; the cause is for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	Timeout bool
	Status  int // upstream status for HTTPStatusError
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error { return e.cause }

// HTTPStatus maps the classification onto the status the API answers with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case ValidationError, NotFoundError:
		return http.StatusBadRequest
	case NetworkError:
		if e.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case HTTPStatusError, ParseError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: ValidationError, Message: msg}
}

func NewNotFoundError() *Error {
	return &Error{Kind: NotFoundError, Message: MsgUnknownService}
}

func NewNetworkError(msg string, timeout bool, cause error) *Error {
	return &Error{Kind: NetworkError, Message: msg, Timeout: timeout, cause: cause}
}

func NewHTTPStatusError(status int) *Error {
	return &Error{Kind: HTTPStatusError, Message: fmt.Sprintf(msgStatusTemplate, status), Status: status}
}

func NewParseError(kind Kind, cause error) *Error {
	return &Error{Kind: ParseError, Message: fmt.Sprintf(msgParseTemplate, kind), cause: cause}
}

// AsError returns err as a classified *Error. Unclassified errors become
// network failures with a generic message so their text never leaks.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewNetworkError(MsgTimeout, true, err)
	case errors.Is(err, context.Canceled):
		return NewNetworkError(MsgFetchCancelled, false, err)
	default:
		return NewNetworkError(msgUnknownFallback, false, err)
	}
}
