// Package auth issues and checks the identity of whoever is calling the API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /api/sessions with email + password
//  2. AccountService verifies the bcrypt hash and asks TokenService for a JWT
//  3. The handler returns the JWT in the body and in an HttpOnly "token" cookie
//  4. On later requests the middleware reads the JWT (Authorization header or
//     cookie), validates it and stores the Identity in the request context
//  5. Handlers and services read it back with Current / Require
//
// Identity travels WITH EACH REQUEST. There is no process-wide "logged in
// user" variable, so two people using the API at the same time never see
// each other's session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "smartbio"

// DefaultTokenTTL is used when NewTokenService is given a zero TTL.
const DefaultTokenTTL = 24 * time.Hour

// Identity is the authenticated caller.
type Identity struct {
	Email     string
	SessionID string // the token's "jti"; distinguishes two logins by the same account
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens (HS256).
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret should be at least 32
// bytes of random data in production, e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL reports how long issued tokens stay valid. The handler uses it for the
// cookie MaxAge so both expire together.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload.
//
//	sub → account email
//	jti → xid, unique per login
type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a new token for email.
func (s *TokenService) Generate(email string) (string, error) {
	if email == "" {
		return "", errors.New("auth: cannot issue a token without a subject")
	}

	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a JWT string.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid and the algorithm is HS256 (no "none", no RS/HS confusion)
//   - Token is not expired, and has an expiry at all
//   - Issuer is "smartbio"
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token has no subject")
	}

	return Identity{Email: c.Subject, SessionID: c.ID}, nil
}
