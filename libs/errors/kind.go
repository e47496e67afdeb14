package errors

import (
	"errors"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	// KindUnknown is reported for errors that carry no kind.
	KindUnknown Kind = "unknown"
	// KindValidation - missing or malformed business input, fixable by the caller
	KindValidation Kind = "validation"
	// KindUpstreamData - product lookup failed or returned nothing
	KindUpstreamData Kind = "upstream_data"
	// KindKeyLoad - the signing keystore could not be opened
	KindKeyLoad Kind = "key_load"
	// KindSigning - the payload could not be encoded or signed
	KindSigning Kind = "signing"
	// KindGateway - transport or http level failure talking to the gateway
	KindGateway Kind = "gateway"
	// KindExpiredPayload - the signed payload validity window elapsed before submission
	KindExpiredPayload Kind = "expired_payload"
)

var (
	// ErrValidation matches any error of KindValidation with errors.Is
	ErrValidation = &KindError{kind: KindValidation}
	// ErrUpstreamData matches any error of KindUpstreamData with errors.Is
	ErrUpstreamData = &KindError{kind: KindUpstreamData}
	// ErrKeyLoad matches any error of KindKeyLoad with errors.Is
	ErrKeyLoad = &KindError{kind: KindKeyLoad}
	// ErrSigning matches any error of KindSigning with errors.Is
	ErrSigning = &KindError{kind: KindSigning}
	// ErrGateway matches any error of KindGateway with errors.Is
	ErrGateway = &KindError{kind: KindGateway}
	// ErrExpiredPayload matches any error of KindExpiredPayload with errors.Is
	ErrExpiredPayload = &KindError{kind: KindExpiredPayload}
)

// KindError is an error tagged with a Kind, a human readable message,
// an optional cause and optional data for the caller.
type KindError struct {
	kind    Kind
	message string
	cause   error
	data    interface{}
}

// NewKind creates a new error of the given kind
func NewKind(kind Kind, message string, cause error) error {
	return &KindError{kind: kind, message: message, cause: cause}
}

// NewKindWithData creates a new error of the given kind carrying data
func NewKindWithData(kind Kind, message string, cause error, data interface{}) error {
	return &KindError{kind: kind, message: message, cause: cause, data: data}
}

// Kind of the error
func (e *KindError) Kind() Kind {
	return e.kind
}

// Message without the cause
func (e *KindError) Message() string {
	return e.message
}

// Data attached to the error, if any
func (e *KindError) Data() interface{} {
	return e.data
}

// Error implements error
func (e *KindError) Error() string {
	msg := e.message
	if msg == "" {
		msg = string(e.kind)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the cause
func (e *KindError) Unwrap() error {
	return e.cause
}

// Is reports a match for any KindError of the same kind
func (e *KindError) Is(target error) bool {
	t, ok := target.(*KindError)
	return ok && t.kind == e.kind
}

// KindOf returns the kind of the first KindError in the chain
func KindOf(err error) Kind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}
