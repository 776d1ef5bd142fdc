package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/smartbio/internal/auth"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/service"
)

// AccountService is what AuthHandler needs from the service layer.
type AccountService interface {
	Register(ctx context.Context, creds service.Credentials) (*model.Account, error)
	Authenticate(ctx context.Context, creds service.Credentials) (*service.AuthResult, error)
}

// AuthHandler manages registration, login and logout.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account
//   - HandleLogin    → check credentials, issue the JWT (body + cookie)
//   - HandleLogout   → clear the JWT cookie
//   - HandleSession  → report who the caller is, if anyone
type AuthHandler struct {
	accounts AccountService
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. tokenTTL sets the cookie lifetime
// and should match the TokenService TTL.
func NewAuthHandler(accounts AccountService, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

type accountResponse struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type loginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/accounts
// REQUEST BODY: {"email": "a@x.com", "password": "p1"}
// RESPONSE: 201 {"email": "a@x.com", "createdAt": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.Register(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{Email: account.Email, CreatedAt: account.CreatedAt})
}

// HandleLogin authenticates and issues a session token.
//
// HTTP: POST /api/sessions
// REQUEST BODY: {"email": "a@x.com", "password": "p1"}
// RESPONSE: 200 {"email": "a@x.com", "token": "<jwt>"} + Set-Cookie: token=<jwt>
//
// The token is returned twice: browsers use the HttpOnly cookie, API clients
// send it back as "Authorization: Bearer <jwt>".
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), creds)
	if err != nil {
		h.logger.Info("login rejected", slog.String("email", creds.Email))
		writeError(w, err)
		return
	}

	// HttpOnly = JavaScript cannot read this cookie (XSS protection).
	// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
	// Secure should be true in production (HTTPS only); left off for local dev.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{Email: result.Identity.Email, Token: result.Token})
}

// HandleLogout clears the JWT cookie.
//
// HTTP: DELETE /api/sessions
//
// Tokens are stateless, so "logout" means the browser forgets the cookie. A
// copied bearer token stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleSession reports the caller's identity.
//
// HTTP: GET /api/session
// Auth: Optional
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.Current(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, Email: id.Email})
}
