package middleware

import "net/http"

// NewMaxBodySizeHandler caps request bodies at limit bytes. A declared
// Content-Length over the limit is refused with 413 before the handler runs.
// Chunked bodies are wrapped in http.MaxBytesReader; the handler's JSON
// decoder then fails with *http.MaxBytesError, which the handler layer also
// turns into 413 payload_too_large.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.ContentLength > limit:
				writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
				return
			case r.Body != nil && r.Body != http.NoBody:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
