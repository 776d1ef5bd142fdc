package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/repository"
)

var _ repository.BioRepository = (*DB)(nil)

const bioColumns = `id, owner_email, business_name, product, objective, copy_text, link, created_at`

// CreateBio inserts an immutable bio row.
//
// The caller allocates bio.ID. If that ID already exists the UNIQUE
// constraint fires and we return IdentifierCollision. The existing row
// is left untouched; there is no INSERT OR REPLACE here.
func (db *DB) CreateBio(ctx context.Context, bio *model.Bio) error {
	if bio.CreatedAt.IsZero() {
		bio.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bios (`+bioColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bio.ID,
		bio.OwnerEmail,
		bio.BusinessName,
		bio.Product,
		bio.Objective,
		bio.Copy,
		bio.Link,
		bio.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.IdentifierCollision(bio.ID)
		}
		return fmt.Errorf("sqlite: creating bio %s: %w", bio.ID, err)
	}

	return nil
}

// ListBiosByOwner returns every bio owned by ownerEmail, oldest first.
//
// ORDER BY seq (the AUTOINCREMENT column), not created_at: two bios created
// within the same clock tick would otherwise have no defined order.
func (db *DB) ListBiosByOwner(ctx context.Context, ownerEmail string) ([]model.Bio, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+bioColumns+` FROM bios WHERE owner_email = ? ORDER BY seq ASC`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bios for %s: %w", ownerEmail, err)
	}
	defer rows.Close()

	return scanBios(rows)
}

// ListAllBios returns every bio, oldest first.
func (db *DB) ListAllBios(ctx context.Context) ([]model.Bio, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+bioColumns+` FROM bios ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bios: %w", err)
	}
	defer rows.Close()

	return scanBios(rows)
}

// scanBios drains rows. The caller still owns rows.Close().
func scanBios(rows *sql.Rows) ([]model.Bio, error) {
	bios := make([]model.Bio, 0)

	for rows.Next() {
		var b model.Bio
		if err := rows.Scan(
			&b.ID, &b.OwnerEmail, &b.BusinessName, &b.Product,
			&b.Objective, &b.Copy, &b.Link, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bio row: %w", err)
		}
		bios = append(bios, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bios: %w", err)
	}

	return bios, nil
}
