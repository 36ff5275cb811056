package middleware

import (
	"net/http"

	"opstats/internal/platform/logger"
	pnet "opstats/internal/platform/net"
)

// RequestContext copies the chi request id onto the logger context so that
// logger.C picks it up without importing chi
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := pnet.RequestID(ctx); id != "" {
			ctx = logger.WithRequest(ctx, id)
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
