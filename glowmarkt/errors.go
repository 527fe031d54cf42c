package glowmarkt

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure.
type Kind int

const (
	// KindNotFound means the requested item does not exist.
	KindNotFound Kind = iota
	// KindNotAuthenticated means the credentials or token were rejected.
	KindNotAuthenticated
	// KindNetwork is a transport-level failure.
	KindNetwork
	// KindClient is a request error other than the above (4xx).
	KindClient
	// KindServer is an error on the API side (5xx).
	KindServer
	// KindResponse means the API payload could not be decoded.
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindNotAuthenticated:
		return "NotAuthenticated"
	case KindNetwork:
		return "Network"
	case KindClient:
		return "Client"
	case KindServer:
		return "Server"
	case KindResponse:
		return "Response"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned for every API-level failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is an API not-found error.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsNotAuthenticated reports whether err is an authentication failure.
func IsNotAuthenticated(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotAuthenticated
}

func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusUnauthorized:
		return KindNotAuthenticated
	case code >= 500:
		return KindServer
	default:
		return KindClient
	}
}
