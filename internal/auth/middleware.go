package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/pyqvault/pyqvault/pkg/handlers"
)

type contextKey string

const usernameKey contextKey = "auth.username"

// UsernameFromContext returns the authenticated username, if any.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// RequireAuth wraps a handler, rejecting requests without a valid bearer token.
// The authenticated username is placed on the request context.
func RequireAuth(auth System, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			handlers.RespondJSON(w, MapHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}

		claims, err := auth.Verify(token)
		if err != nil {
			handlers.RespondJSON(w, MapHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

// ClientAddr extracts the client address for rate limiting, preferring the
// first X-Forwarded-For entry when the service sits behind a proxy.
func ClientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
