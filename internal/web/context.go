package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/priceexport/internal/core"
)

// clientIP returns the request's client address without the port.
// RemoteAddr has already been rewritten by TrustedRealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// withClientIP stores the client IP in the request context for export logs.
func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClientIP(r.Context(), clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
