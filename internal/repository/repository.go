// Package repository declares the storage contracts the service layer depends on.
// internal/repository/sqlite implements them; service tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/smartbio/internal/model"
)

// AccountRepository stores accounts keyed by email.
type AccountRepository interface {
	// CreateAccount inserts a new account. Returns apperror.ErrDuplicateAccount
	// if the email is already registered; an existing row is never overwritten.
	CreateAccount(ctx context.Context, account *model.Account) error

	// GetAccountByEmail returns apperror.ErrNotFound if no account matches.
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
}

// BioRepository stores generated bios. Bios are append-only.
type BioRepository interface {
	// CreateBio inserts bio as given (ID and Link already set). Returns
	// apperror.ErrIdentifierCollision if the ID is taken.
	CreateBio(ctx context.Context, bio *model.Bio) error

	// ListBiosByOwner returns the owner's bios in insertion order.
	ListBiosByOwner(ctx context.Context, ownerEmail string) ([]model.Bio, error)

	// ListAllBios returns every bio in insertion order.
	ListAllBios(ctx context.Context) ([]model.Bio, error)
}
