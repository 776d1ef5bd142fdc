package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/auth"
	"github.com/sakif/smartbio/internal/metrics"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/pages"
)

const (
	pageWriteAttempts = 3
	pageWriteTimeout  = 10 * time.Second
)

// GenerateResult is a freshly created bio. Published is false when the
// record was saved but its page could not be written; Reconcile will write
// it later.
type GenerateResult struct {
	Bio       *model.Bio
	Published bool
}

// BioService runs the generate-and-publish pipeline.
type BioService struct {
	generator *CopyGenerator
	archive   *BioArchive
	pages     pages.Store
	logger    *slog.Logger
	metrics   *metrics.Collector

	// retryDelay is the pause before the second page write; it doubles after.
	retryDelay time.Duration
}

func NewBioService(
	generator *CopyGenerator,
	archive *BioArchive,
	store pages.Store,
	logger *slog.Logger,
	m *metrics.Collector,
) *BioService {
	return &BioService{
		generator:  generator,
		archive:    archive,
		pages:      store,
		logger:     logger,
		metrics:    m,
		retryDelay: 200 * time.Millisecond,
	}
}

// Generate creates a bio for the caller in ctx.
//
// Steps, each gating the next:
//  1. the caller must be authenticated; nothing is stored otherwise
//  2. the input must be valid
//  3. the model produces the copy; on failure nothing is stored
//  4. the record is saved, allocating the public identifier
//  5. the page is written (retried); its failure does not undo step 4
//
// When Published is true the page is readable before Generate returns.
func (s *BioService) Generate(ctx context.Context, in model.BioInput) (*GenerateResult, error) {
	id, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	in = model.BioInput{
		BusinessName: strings.TrimSpace(in.BusinessName),
		Product:      strings.TrimSpace(in.Product),
		Objective:    strings.TrimSpace(in.Objective),
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	copyText, err := s.generator.Generate(ctx, in)
	if err != nil {
		return nil, err
	}

	bio, err := s.archive.Create(ctx, id.Email, in, copyText)
	if err != nil {
		return nil, err
	}
	s.metrics.BiosGenerated.Inc()

	// The record exists now. A client hanging up must not leave it without a
	// page, so the write runs on a context that ignores cancellation.
	published := s.publish(context.WithoutCancel(ctx), bio)

	s.logger.Info("bio generated",
		slog.String("id", bio.ID),
		slog.String("owner", bio.OwnerEmail),
		slog.Bool("published", published),
	)
	return &GenerateResult{Bio: bio, Published: published}, nil
}

// publish writes bio's page, retrying with backoff. It reports whether the
// page is now stored.
func (s *BioService) publish(ctx context.Context, bio *model.Bio) bool {
	page := pageFor(bio)
	delay := s.retryDelay

	for attempt := 1; attempt <= pageWriteAttempts; attempt++ {
		writeCtx, cancel := context.WithTimeout(ctx, pageWriteTimeout)
		err := s.pages.Write(writeCtx, page)
		cancel()
		if err == nil {
			return true
		}

		s.logger.Warn("page write failed",
			slog.String("id", bio.ID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if attempt < pageWriteAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}

	s.metrics.PageWritesFailed.Inc()
	s.logger.Error("page left unpublished, reconciliation will retry", slog.String("id", bio.ID))
	return false
}

// ListMine returns the caller's bios, oldest first.
func (s *BioService) ListMine(ctx context.Context) ([]model.Bio, error) {
	id, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	return s.archive.ListByOwner(ctx, id.Email)
}

// Reconcile writes the page of every record whose page is missing and
// returns how many it repaired. Existing pages are left alone, so running it
// twice is harmless.
func (s *BioService) Reconcile(ctx context.Context) (int, error) {
	bios, err := s.archive.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var (
		repaired int
		errs     []error
	)
	for i := range bios {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		bio := &bios[i]

		_, err := s.pages.Read(ctx, bio.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			errs = append(errs, fmt.Errorf("checking page %s: %w", bio.ID, err))
			continue
		}

		if err := s.pages.Write(ctx, pageFor(bio)); err != nil {
			errs = append(errs, fmt.Errorf("rewriting page %s: %w", bio.ID, err))
			continue
		}
		repaired++
		s.metrics.PagesRepaired.Inc()
		s.logger.Info("page repaired", slog.String("id", bio.ID))
	}

	return repaired, errors.Join(errs...)
}

func pageFor(bio *model.Bio) pages.Page {
	return pages.Page{
		ID:           bio.ID,
		BusinessName: bio.BusinessName,
		Product:      bio.Product,
		Objective:    bio.Objective,
		Copy:         bio.Copy,
	}
}
