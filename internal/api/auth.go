package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"log"
	"net/http"
	"strings"
)

// TokenGuard protects mutating endpoints behind a shared operator token.
// Reads stay open so dashboards can poll without credentials.
type TokenGuard struct {
	digest []byte
}

// NewTokenGuard returns a guard for token. An empty token disables the check.
func NewTokenGuard(token string) *TokenGuard {
	if token == "" {
		return &TokenGuard{}
	}
	return &TokenGuard{digest: digest(token)}
}

// Enabled reports whether requests are checked.
func (g *TokenGuard) Enabled() bool { return g != nil && g.digest != nil }

func digest(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// Authorized reports whether r carries the operator token.
func (g *TokenGuard) Authorized(r *http.Request) bool {
	if !g.Enabled() {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	// Equal-length digests keep the comparison constant time.
	return hmac.Equal(digest(token), g.digest)
}

// Middleware rejects unauthorised non-GET requests with 401.
func (g *TokenGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !g.Authorized(r) {
			log.Printf("🔒 Rejected %s %s from %s", r.Method, r.URL.Path, GetClientIP(r))
			RecordConnectionRejected("auth")
			w.Header().Set("WWW-Authenticate", `Bearer realm="sentinel"`)
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
