// Package handler contains the HTTP handlers of both servers.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (path params, body, cookies)
//  2. Call the service layer
//  3. Write the HTTP response (status code, headers, body)
//
// Handlers hold no business rules. They depend on small interfaces declared
// here, so tests can drive them with hand-written mocks.
package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//
//	{"error": "duplicate_account", "message": "an account with email a@x.com already exists"}
//
// so the UI always knows what fields to expect.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/smartbio/internal/apperror"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable kind, e.g. "not_found"
	Message string `json:"message"`         // human-readable description
	Field   string `json:"field,omitempty"` // offending input field, for validation errors
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status code MUST be set before the body is written; once
// Encode writes, later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps an error kind to its HTTP status and wire name.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not_authenticated"
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrDuplicateAccount):
		return http.StatusConflict, "duplicate_account"
	case errors.Is(err, apperror.ErrIdentifierCollision):
		return http.StatusConflict, "identifier_collision"
	case errors.Is(err, apperror.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable, "generation_unavailable"
	case errors.Is(err, apperror.ErrStorage):
		return http.StatusInternalServerError, "storage_failure"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it. Only *apperror.AppError messages reach the client; anything else
// gets a generic message, since raw errors may carry SQL or file paths.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, kind := errorStatus(err)
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "30")
		}
		writeJSON(w, status, ErrorResponse{
			Error:   kind,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a single JSON object into dst. Unknown fields are
// rejected so typos like "bussinessName" fail loudly instead of silently
// producing an empty field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("", fmt.Sprintf("request body must be at most %d bytes", maxBodyBytes))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("", "request body is required")
		}
		return apperror.ValidationFailed("", "request body must be a valid JSON object")
	}
	if dec.More() {
		return apperror.ValidationFailed("", "request body must contain a single JSON object")
	}
	return nil
}
