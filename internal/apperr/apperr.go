// Package apperr defines the error taxonomy shared across services and
// handlers so HTTP mapping happens in exactly one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindState
	KindUpstream
	KindQuotaExceeded
)

// Error carries a classification plus optional context fields.
type Error struct {
	Kind    Kind
	Message string
	// AccountStatus holds the current lifecycle status for authorization
	// failures, so clients can route to a pending/rejected screen.
	AccountStatus string
	// UpstreamCode is the provider HTTP status for upstream failures, when known.
	UpstreamCode int
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing client input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Conflict reports a duplicate-resource condition such as a taken email.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Authentication reports missing or invalid credentials. The message must stay
// generic; details belong in server-side logs only.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization reports an authenticated caller lacking role or status.
func Authorization(message, accountStatus string) *Error {
	return &Error{Kind: KindAuthorization, Message: message, AccountStatus: accountStatus}
}

// NotFound reports an absent target record.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// State reports an operation invalid for the current lifecycle state.
func State(message string) *Error {
	return &Error{Kind: KindState, Message: message}
}

// Upstream reports a model-provider failure. code is the provider HTTP status
// when it could be determined, zero otherwise.
func Upstream(message string, code int, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, UpstreamCode: code, Err: err}
}

// QuotaExceeded reports a rate-limited upstream call.
func QuotaExceeded(err error) *Error {
	return &Error{
		Kind:         KindQuotaExceeded,
		Message:      "AI quota exhausted, please retry later or contact an administrator",
		UpstreamCode: http.StatusTooManyRequests,
		Err:          err,
	}
}

// KindOf extracts the classification from an error chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to its transport status code.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindConflict, KindState:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindUpstream:
		if e.UpstreamCode >= 400 && e.UpstreamCode < 600 {
			return e.UpstreamCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
