package auth

import (
	"errors"
	"net/http"
	"strings"
)

// CookieName is the HttpOnly cookie holding the JWT for browser clients.
const CookieName = "token"

var errNoToken = errors.New("auth: no token presented")

// RequireAuth rejects requests without a valid token with 401 and otherwise
// stores the Identity in the request context.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identityFromRequest(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"not_authenticated","message":"you must be logged in to do that"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through unchanged.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := identityFromRequest(r, tokens); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// identityFromRequest looks for "Authorization: Bearer <jwt>" first (API
// clients), then the token cookie (browsers).
func identityFromRequest(r *http.Request, tokens *TokenService) (Identity, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
			return Identity{}, errNoToken
		}
		return tokens.Validate(strings.TrimSpace(value))
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, errNoToken
	}
	return tokens.Validate(cookie.Value)
}
