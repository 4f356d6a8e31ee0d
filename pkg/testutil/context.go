package testutil

import (
	"net/http"
	"time"

	"scanledger/pkg/requestcontext"
)

// WithOperator stamps an operator id on the request context, simulating what
// the auth middleware does for authenticated requests.
func WithOperator(req *http.Request, operator string) *http.Request {
	return req.WithContext(requestcontext.WithOperator(req.Context(), operator))
}

// WithRequestTime pins the request clock so handler paths that stamp
// timestamps produce deterministic values.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
