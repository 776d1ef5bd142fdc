package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/metrics"
	"github.com/sakif/smartbio/internal/pages"
)

// PagePublisher hands out stored page documents. It has no notion of
// accounts: anyone with the link can read the page.
type PagePublisher struct {
	store   pages.Store
	logger  *slog.Logger
	metrics *metrics.Collector
}

func NewPagePublisher(store pages.Store, logger *slog.Logger, m *metrics.Collector) *PagePublisher {
	return &PagePublisher{store: store, logger: logger, metrics: m}
}

// Serve returns the document for id, or apperror.ErrNotFound.
func (p *PagePublisher) Serve(ctx context.Context, id string) ([]byte, error) {
	doc, err := p.store.Read(ctx, id)
	switch {
	case err == nil:
		p.metrics.PageViews.WithLabelValues(metrics.ViewServed).Inc()
		return doc, nil
	case errors.Is(err, apperror.ErrNotFound):
		p.metrics.PageViews.WithLabelValues(metrics.ViewNotFound).Inc()
		return nil, err
	default:
		p.metrics.PageViews.WithLabelValues(metrics.ViewError).Inc()
		p.logger.Error("failed to read page",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperror.StorageFailure("reading page")
	}
}
