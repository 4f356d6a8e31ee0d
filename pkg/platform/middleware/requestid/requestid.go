// Package requestid assigns each request a correlation id, honoring an
// X-Request-ID supplied by a trusted proxy.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"scanledger/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware stores a request id in the context and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(headerName, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
