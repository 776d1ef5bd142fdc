// Package model defines the data structures used throughout the application.
package model

import "time"

// Account is a registered user. The email is the identity key.
//
// PasswordHash holds a bcrypt hash, never the plaintext secret. The json:"-"
// tag keeps it out of every API response even if an Account is encoded whole.
type Account struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
