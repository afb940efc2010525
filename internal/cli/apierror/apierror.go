// Package apierror classifies failed backend calls into a small, stable
// taxonomy that commands and the session can branch on with errors.Is.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies a failure class.
type Kind string

const (
	KindBadRequest          Kind = "bad_request"
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindNotFound            Kind = "not_found"
	KindServerError         Kind = "server_error"
	KindNetwork             Kind = "network_error"
	KindRequestConstruction Kind = "request_construction"
	KindUnclassified        Kind = "unclassified"
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrServerError         = errors.New("server error")
	ErrNetwork             = errors.New("network error")
	ErrRequestConstruction = errors.New("request construction error")
	ErrUnclassified        = errors.New("unclassified http error")
)

var sentinels = map[Kind]error{
	KindBadRequest:          ErrBadRequest,
	KindUnauthorized:        ErrUnauthorized,
	KindForbidden:           ErrForbidden,
	KindNotFound:            ErrNotFound,
	KindServerError:         ErrServerError,
	KindNetwork:             ErrNetwork,
	KindRequestConstruction: ErrRequestConstruction,
	KindUnclassified:        ErrUnclassified,
}

// Error is a classified failure. Message is safe to show to the operator.
type Error struct {
	Kind    Kind
	Status  int    // 0 when no response was received
	Detail  string // server supplied "detail", if any
	Message string
	Method  string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Method != "" {
		fmt.Fprintf(&b, "%s %s: ", e.Method, e.Path)
	}
	b.WriteString(e.Message)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// FromStatus builds the error for a non-2xx response. body is the raw
// response body and may be empty.
func FromStatus(status int, body []byte) *Error {
	detail := ParseDetail(body)
	e := &Error{Status: status, Detail: detail}

	switch status {
	case http.StatusBadRequest:
		e.Kind = KindBadRequest
		e.Message = detail
		if e.Message == "" {
			e.Message = "bad request parameters"
		}
	case http.StatusUnauthorized:
		e.Kind = KindUnauthorized
		e.Message = "unauthorized, please log in again"
	case http.StatusForbidden:
		e.Kind = KindForbidden
		e.Message = "you do not have permission to access this resource"
	case http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = "the requested resource does not exist"
	case http.StatusInternalServerError:
		e.Kind = KindServerError
		e.Message = "server error, please try again later"
	default:
		e.Kind = KindUnclassified
		if detail == "" {
			detail = "unknown error"
		}
		e.Message = "request failed: " + detail
	}
	return e
}

// Network wraps a transport failure where no response was received.
func Network(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "network error, please check your connection",
		Err:     err,
	}
}

// Construction wraps a failure that happened before the request was sent.
func Construction(err error) *Error {
	return &Error{
		Kind:    KindRequestConstruction,
		Message: "could not build request",
		Err:     err,
	}
}

// ParseDetail extracts the "detail" field of an error body. FastAPI returns
// either a string or a list of validation entries carrying "msg".
func ParseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.Msg != "" {
				msgs = append(msgs, entry.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return strings.TrimSpace(string(envelope.Detail))
}
