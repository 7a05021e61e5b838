package testutil

import (
	"net/http"
	"time"

	"fairdash/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, mirroring the
// request middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClient adds client IP and User-Agent to the request context.
func WithClient(req *http.Request, clientIP, userAgent string) *http.Request {
	req.Header.Set("User-Agent", userAgent)
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}

// WithFixedTime pins the request-scoped clock.
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
