package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/bioid"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/repository"
)

// maxIDAttempts is how many fresh identifiers Create tries before giving up.
const maxIDAttempts = 3

// BioArchive allocates identifiers and persists bio records.
type BioArchive struct {
	repo    repository.BioRepository
	newID   bioid.Generator
	baseURL string
	logger  *slog.Logger
}

// NewBioArchive creates a BioArchive. newID may be nil to use bioid.New.
func NewBioArchive(repo repository.BioRepository, newID bioid.Generator, baseURL string, logger *slog.Logger) *BioArchive {
	if newID == nil {
		newID = bioid.New
	}
	return &BioArchive{
		repo:    repo,
		newID:   newID,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Create stores a new record for owner. The repository refuses to overwrite
// an existing identifier; on a clash Create draws another one, up to
// maxIDAttempts times, before failing with apperror.ErrIdentifierCollision.
func (a *BioArchive) Create(ctx context.Context, owner string, in model.BioInput, copyText string) (*model.Bio, error) {
	var lastID string
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := a.newID()
		if err != nil {
			a.logger.Error("failed to allocate bio id", slog.String("error", err.Error()))
			return nil, apperror.StorageFailure("allocating an identifier")
		}
		lastID = id

		bio := &model.Bio{
			ID:           id,
			OwnerEmail:   owner,
			BusinessName: in.BusinessName,
			Product:      in.Product,
			Objective:    in.Objective,
			Copy:         copyText,
			Link:         model.PublicLink(a.baseURL, id),
		}

		err = a.repo.CreateBio(ctx, bio)
		if err == nil {
			return bio, nil
		}
		if errors.Is(err, apperror.ErrIdentifierCollision) {
			a.logger.Warn("bio id collision, retrying",
				slog.String("id", id),
				slog.Int("attempt", attempt),
			)
			continue
		}

		a.logger.Error("failed to save bio",
			slog.String("id", id),
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
		return nil, apperror.StorageFailure("saving bio")
	}

	return nil, apperror.IdentifierCollision(lastID)
}

// ListByOwner returns exactly owner's records, oldest first.
func (a *BioArchive) ListByOwner(ctx context.Context, owner string) ([]model.Bio, error) {
	bios, err := a.repo.ListBiosByOwner(ctx, owner)
	if err != nil {
		a.logger.Error("failed to list bios",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
		return nil, apperror.StorageFailure("listing bios")
	}
	return bios, nil
}

// ListAll returns every record, oldest first.
func (a *BioArchive) ListAll(ctx context.Context) ([]model.Bio, error) {
	bios, err := a.repo.ListAllBios(ctx)
	if err != nil {
		a.logger.Error("failed to list all bios", slog.String("error", err.Error()))
		return nil, apperror.StorageFailure("listing bios")
	}
	return bios, nil
}
