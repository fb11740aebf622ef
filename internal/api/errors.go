package api

import (
	"fmt"
	"net/http"
)

// Kind classifies an API failure into the closed set the console reacts to.
type Kind int

const (
	// KindNetwork covers transport failures and unclassified statuses.
	KindNetwork Kind = iota
	// KindAuth covers rejected credentials, untrusted fingerprints, and
	// superseded tokens.
	KindAuth
	// KindValidation covers inputs the service refused (short password,
	// wrong old password).
	KindValidation
	// KindNotFound covers unknown device or log ids; callers render these
	// as empty state, not as hard failures.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "network"
	}
}

// Error is the normalized failure shape every client operation returns for
// service-side rejections.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is an API not-found failure.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Kind == KindNotFound
}

// IsAuth reports whether err is an authentication/authorization failure.
func IsAuth(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Kind == KindAuth
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindNetwork
	}
}

func newStatusError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &Error{Kind: kindFromStatus(status), Status: status, Message: message}
}

func newNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: fmt.Sprintf("request failed: %v", err)}
}
