package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

// CreateAccount inserts a new account.
//
// UNIQUENESS IS THE DATABASE'S JOB:
// We do NOT "SELECT then INSERT". Two concurrent registrations for the same
// email could both pass the SELECT. Instead the email is the PRIMARY KEY and
// a constraint violation on INSERT is translated into DuplicateAccount.
func (db *DB) CreateAccount(ctx context.Context, account *model.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash, created_at) VALUES (?, ?, ?)`,
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateAccount(account.Email)
		}
		return fmt.Errorf("sqlite: creating account %s: %w", account.Email, err)
	}

	return nil
}

// GetAccountByEmail retrieves an account by its exact email.
// Returns apperror.ErrNotFound if no account exists with that email.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account

	err := db.conn.QueryRowContext(ctx,
		`SELECT email, password_hash, created_at FROM accounts WHERE email = ?`,
		email,
	).Scan(&a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", email)
		}
		return nil, fmt.Errorf("sqlite: getting account %s: %w", email, err)
	}

	return &a, nil
}
