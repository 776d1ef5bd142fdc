package pages

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sakif/smartbio/internal/apperror"
)

// FileStore keeps each page as <dir>/<id>.html.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created on
// the first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".html")
}

// Write replaces the document atomically: the bytes go to a temp file in the
// same directory which is then renamed over the target, so a concurrent Read
// sees either the old document or the new one, never half of it.
func (s *FileStore) Write(ctx context.Context, p Page) error {
	if err := checkID(p.ID); err != nil {
		return fmt.Errorf("pages: refusing to write invalid id %q", p.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := Render(p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("pages: creating %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+p.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("pages: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("pages: writing %s: %w", p.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pages: closing %s: %w", p.ID, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("pages: chmod %s: %w", p.ID, err)
	}
	if err := os.Rename(tmpName, s.path(p.ID)); err != nil {
		return fmt.Errorf("pages: publishing %s: %w", p.ID, err)
	}
	return nil
}

func (s *FileStore) Read(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	doc, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.NotFound("page", id)
		}
		return nil, fmt.Errorf("pages: reading %s: %w", id, err)
	}
	return doc, nil
}
