package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/service"
)

// BioService is what BioHandler needs from the service layer.
type BioService interface {
	Generate(ctx context.Context, in model.BioInput) (*service.GenerateResult, error)
	ListMine(ctx context.Context) ([]model.Bio, error)
}

// BioHandler exposes generation and listing. Both routes sit behind
// RequireAuth; the service checks the identity again.
type BioHandler struct {
	bios   BioService
	logger *slog.Logger
}

func NewBioHandler(bios BioService, logger *slog.Logger) *BioHandler {
	return &BioHandler{bios: bios, logger: logger}
}

type generateResponse struct {
	Bio       *model.Bio `json:"bio"`
	Published bool       `json:"published"`
}

// HandleGenerate runs the generate-and-publish pipeline.
//
// HTTP: POST /api/bios
// REQUEST BODY: {"businessName": "Shop", "product": "shoes", "objective": "buy now"}
// RESPONSE: 201 {"bio": {..., "link": "http://localhost:5000/3f9a0c12"}, "published": true}
//
// published=false means the bio is saved but its page is not live yet; it
// will be written by the next reconciliation.
func (h *BioHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var in model.BioInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.bios.Generate(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{Bio: result.Bio, Published: result.Published})
}

// HandleList returns the caller's bios, oldest first.
//
// HTTP: GET /api/bios
// RESPONSE: 200 [{"id": "...", "businessName": "...", ...}, ...]
//
// An account with no bios gets [] rather than null.
func (h *BioHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	bios, err := h.bios.ListMine(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if bios == nil {
		bios = []model.Bio{}
	}
	writeJSON(w, http.StatusOK, bios)
}
