package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/requestutils"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// AppError is error type for json HTTP responses
type AppError struct {
	Cause     error       `json:"-"`
	Message   string      `json:"message"`             // description of failure
	ErrorCode string      `json:"errorCode,omitempty"` // short error code string
	Code      int         `json:"code"`                // status code for some reason
	Data      interface{} `json:"data,omitempty"`      // application specific data
}

// Error makes app error an error
func (e *AppError) Error() string {
	msg := "error: " + e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}

	return msg
}

// ServeHTTP responds according to the passed AppError
func (e *AppError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(e.Code)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		panic(err)
	}
}

// WrapError with an additional message as an AppError
func WrapError(err error, msg string, passedCode int) *AppError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		code := passedCode
		if code == 0 {
			code = http.StatusBadRequest
		}
		// use defaults passed in
		return &AppError{
			Cause:   err,
			Message: msg,
			Code:    code,
		}
	}
	code := appErr.Code
	if code == 0 {
		code = passedCode
	}
	if len(msg) != 0 {
		msg = fmt.Sprintf("%s: ", msg)
	}
	return &AppError{
		Cause:   appErr.Cause,
		Message: fmt.Sprintf("%s%s", msg, appErr.Message),
		Code:    code,
		Data:    appErr.Data,
	}
}

// RenderRawJSON writes already encoded json without touching its bytes
func RenderRawJSON(body []byte, w http.ResponseWriter, status int) *AppError {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		return WrapError(err, "Error writing a response", http.StatusInternalServerError)
	}
	return nil
}

var kindStatus = map[errorutils.Kind]int{
	errorutils.KindValidation:     http.StatusBadRequest,
	errorutils.KindUpstreamData:   http.StatusBadGateway,
	errorutils.KindKeyLoad:        http.StatusInternalServerError,
	errorutils.KindSigning:        http.StatusInternalServerError,
	errorutils.KindGateway:        http.StatusBadGateway,
	errorutils.KindExpiredPayload: http.StatusGatewayTimeout,
}

// WrapKindError renders an error carrying an errorutils.Kind, using the kind as
// the error code. passedCode overrides the status picked for the kind when non zero.
func WrapKindError(err error, msg string, passedCode int) *AppError {
	kind := errorutils.KindOf(err)

	code := passedCode
	if code == 0 {
		var ok bool
		if code, ok = kindStatus[kind]; !ok {
			code = http.StatusInternalServerError
		}
	}

	appErr := &AppError{
		Cause:     err,
		Message:   msg,
		ErrorCode: string(kind),
		Code:      code,
	}

	var ke *errorutils.KindError
	if errors.As(err, &ke) && ke.Data() != nil {
		appErr.Data = ke.Data()
	}

	return appErr
}

// ValidationError creates an error to communicate a bad request was formed
func ValidationError(message string, validationErrors interface{}) *AppError {
	return &AppError{
		Message: "Error validating " + message,
		Code:    http.StatusBadRequest,
		Data: map[string]interface{}{
			"validationErrors": validationErrors,
		},
	}
}

// AppHandler is an http.Handler with JSON requests / responses
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// ServeHTTP responds via the passed handler and handles returned errors
func (fn AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "*/*") || r.Header.Get("Accept") == "" {
		w.Header().Set("content-type", "application/json")
	} else {
		// we cannot supply the encoding type the client is asking for
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if e := fn(w, r); e != nil {
		if e.Code >= 500 && e.Code <= 599 {
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTags(map[string]string{
					"reqID": requestutils.GetRequestID(r.Context()),
				})
				sentry.CaptureException(e)
			})
		}

		l := zerolog.Ctx(r.Context())
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Err(e)
		})

		if e.Cause != nil {
			// Combine error with message
			e.Message = fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}

		e.ServeHTTP(w, r)
	}
}
