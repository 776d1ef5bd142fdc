package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/smartbio/internal/apperror"
)

// PageService is what PageHandler needs from the service layer.
type PageService interface {
	Serve(ctx context.Context, id string) ([]byte, error)
}

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Page not found</title></head>
<body style="font-family: Arial, sans-serif; padding: 40px;">
    <h1>Page not found</h1>
    <p>There is no bio at this address.</p>
</body>
</html>
`

// PageHandler serves published bio pages on the public server. No
// authentication: the link is the only key.
type PageHandler struct {
	pages  PageService
	logger *slog.Logger
}

func NewPageHandler(pages PageService, logger *slog.Logger) *PageHandler {
	return &PageHandler{pages: pages, logger: logger}
}

// HandleServe returns the stored document.
//
// HTTP: GET /{id}
// RESPONSE: 200 text/html, or 404 text/html for unknown ids
func (h *PageHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.pages.Serve(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeNotFoundPage(w)
			return
		}
		h.logger.Error("failed to serve page", slog.String("id", id), slog.String("error", err.Error()))
		http.Error(w, "the page could not be loaded, please try again later", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// HandleNotFound answers every other path on the public server with the same
// 404 page as an unknown id.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeNotFoundPage(w)
}

func writeNotFoundPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(notFoundPage))
}
