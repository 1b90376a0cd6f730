package middleware

import (
	"net/http"

	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

// RequestID keeps a well formed X-Request-Id sent by the caller or assigns a
// fresh one. The id is echoed in the response and stored on the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestid.FromHeader(r.Header)
		if id == "" {
			id = requestid.Generate()
		}
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), id)))
	})
}
