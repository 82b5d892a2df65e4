package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrAuthenticationRequired = errors.New("interactive login required but disallowed")
	ErrUnknownStudent         = errors.New("unknown student")
	ErrAmbiguousStudent       = errors.New("ambiguous student")
	ErrRemoteHTTP             = errors.New("remote http error")
	ErrMalformedMediaURL      = errors.New("malformed media url")
	ErrTagging                = errors.New("tagging failed")
)

// HTTPError is returned for any non-2xx response. It matches ErrRemoteHTTP with errors.Is.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *HTTPError) Unwrap() error {
	return ErrRemoteHTTP
}
