// Package pages renders bios into standalone HTML documents and stores them
// by identifier.
//
// Two Store backends exist:
//   - FileStore: one "<id>.html" file per page in a directory
//   - S3Store:   one "pages/<id>.html" object per page in a bucket (AWS S3,
//     MinIO, or anything else that speaks the S3 API)
//
// The public page server reads straight from the Store. It never looks at the
// database, so a page is visible exactly when its document has been written.
package pages

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/bioid"
)

//go:embed templates/page.html
var templateFS embed.FS

// html/template escapes every field, so business input can never inject
// markup or script into a published page.
var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Page is everything that ends up in a published document.
type Page struct {
	ID           string
	BusinessName string
	Product      string
	Objective    string
	Copy         string
}

// Store persists rendered documents.
type Store interface {
	// Write renders p and stores it under p.ID, replacing any earlier document.
	Write(ctx context.Context, p Page) error

	// Read returns the stored document, or apperror.ErrNotFound.
	Read(ctx context.Context, id string) ([]byte, error)
}

// Render produces the HTML document for p.
func Render(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("pages: rendering %s: %w", p.ID, err)
	}
	return buf.Bytes(), nil
}

// checkID rejects anything that is not a bio identifier before it reaches a
// file path or object key ("../etc/passwd", "a/b", "").
func checkID(id string) error {
	if !bioid.Valid(id) {
		return apperror.NotFound("page", id)
	}
	return nil
}
