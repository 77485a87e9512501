package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestMeta stamps every response with the request id and the serving
// instance so traffic can be traced across instances. Must run after the
// chi RequestID middleware, which honors an incoming x-request-id.
func RequestMeta(instance string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				w.Header().Set("x-request-id", reqID)
			}
			if instance != "" {
				w.Header().Set("x-server-instance", instance)
			}
			next.ServeHTTP(w, r)
		})
	}
}
