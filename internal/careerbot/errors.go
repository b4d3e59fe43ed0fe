package careerbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies failures so callers can decide what the user sees.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindLoginRequired
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindServer
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindLoginRequired:
		return "login-required"
	case KindBadRequest:
		return "bad-request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is returned for every failure at the HTTP boundary. Message is
// always human readable.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultMessage(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultMessage is shown when the server did not provide one.
func DefaultMessage(kind Kind) string {
	switch kind {
	case KindValidation:
		return "please fill in all required fields"
	case KindLoginRequired:
		return "login is required, run `careerbot login` first"
	case KindBadRequest:
		return "the request was rejected as invalid"
	case KindUnauthorized:
		return "authentication expired, please log in again"
	case KindForbidden:
		return "you do not have permission for this request"
	case KindNotFound:
		return "the requested resource was not found"
	case KindConflict:
		return "the resource already exists"
	case KindServer:
		return "server error, please try again later"
	case KindNetwork:
		return "cannot reach the server, check your network connection"
	default:
		return "an unknown error occurred"
	}
}

// KindOf returns the Kind carried by err or KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsSessionExpired reports a 401. On protected calls the client's
// OnUnauthorized hook has already ended the session and told the user.
func IsSessionExpired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// statusError builds an Error for a non-2xx response. A "message" field in
// the JSON body wins over the default text.
func statusError(status int, body []byte) *Error {
	kind := kindForStatus(status)
	msg := serverMessage(body)
	if msg == "" {
		msg = DefaultMessage(kind)
		if kind == KindUnknown {
			msg = fmt.Sprintf("request failed: %d %s", status, http.StatusText(status))
		}
	}

	return &Error{Kind: kind, Status: status, Message: msg}
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
