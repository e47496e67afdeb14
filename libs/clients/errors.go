package clients

import (
	"errors"

	errorutils "github.com/agrojardin/checkout/libs/errors"
)

const (
	// ErrUnableToDecode unable to decode body
	ErrUnableToDecode = "unable to decode response"
	// ErrUnableToReadBody the response body could not be read
	ErrUnableToReadBody = "unable to read response body"
	// ErrProtocolError the error was within the data that went into the endpoint
	ErrProtocolError = "protocol error"
	// ErrMalformedRequest the request was malformed
	ErrMalformedRequest = "malformed request"
	// ErrUnableToEncodeBody body could not be encoded
	ErrUnableToEncodeBody = "unable to encode body"
)

// HTTPState captures the state of the response to be read by lower fns in the stack
type HTTPState struct {
	Status int
	Path   string
	Body   interface{}
}

// NewHTTPError creates a new errors.ErrorBundle with an HTTPState wrapping the status, path and v.
func NewHTTPError(err error, path, message string, status int, v interface{}) error {
	return errorutils.New(err, message, HTTPState{
		Status: status,
		Path:   path,
		Body:   v,
	})
}

// HTTPStateOf returns the HTTPState attached to err, if any
func HTTPStateOf(err error) (HTTPState, bool) {
	var eb *errorutils.ErrorBundle
	if !errors.As(err, &eb) {
		return HTTPState{}, false
	}
	state, ok := eb.Data().(HTTPState)
	return state, ok
}
