package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. Longer inputs would be silently
// truncated by bcrypt, so they are rejected instead.
const MaxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: password does not match")

// PasswordService wraps bcrypt. Only hashes are ever stored: bcrypt embeds a
// random salt and the cost in its output ("$2a$12$<salt><hash>").
//
// The cost is a field so tests can use bcrypt.MinCost (4) and stay fast.
type PasswordService struct {
	cost int
}

// NewPasswordService uses cost 12, roughly 250ms per hash on a modern server.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: 12}
}

// NewPasswordServiceForTest creates a PasswordService with a custom cost.
// Do NOT use a low cost in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil if plaintext matches hash, ErrPasswordMismatch if it
// does not, and another error if the hash itself is unusable.
// bcrypt compares in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
