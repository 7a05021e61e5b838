// Package models holds the rate limiting value types.
package models

import "time"

// Policy caps requests per client within a sliding window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Key namespaces a client identifier under an endpoint class.
func Key(class, client string) string {
	return "ratelimit:" + class + ":" + client
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, at least 1.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}
