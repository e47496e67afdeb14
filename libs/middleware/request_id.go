package middleware

import (
	"context"
	"net/http"

	"github.com/agrojardin/checkout/libs/requestutils"
	uuid "github.com/satori/go.uuid"
)

// RequestIDTransfer transfers the request id from header to context,
// generating one when the caller sent none
func RequestIDTransfer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestutils.RequestIDHeaderKey)
		if reqID == "" {
			reqID = uuid.NewV4().String()
		}
		w.Header().Set(requestutils.RequestIDHeaderKey, reqID)
		ctx := context.WithValue(r.Context(), requestutils.RequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
