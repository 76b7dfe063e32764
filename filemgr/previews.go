package filemgr

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PreviewStore hands out revocable preview handles for files that are not
// uploaded yet. A handle is a file under the preview directory; releasing it
// removes the file.
type PreviewStore struct {
	dir string
}

func NewPreviewStore(dir string) *PreviewStore {
	if dir == "" {
		dir = filepath.Join("static", "previews")
	}
	return &PreviewStore{dir: dir}
}

func (s *PreviewStore) Create(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	handle := uuid.New().String() + filepath.Ext(name)
	if err := os.WriteFile(filepath.Join(s.dir, handle), data, 0o644); err != nil {
		return "", fmt.Errorf("write preview for %s: %w", name, err)
	}
	return handle, nil
}

// Release removes the preview file. Safe to call on an already-released
// handle.
func (s *PreviewStore) Release(handle string) {
	if handle == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(handle))); err != nil && !os.IsNotExist(err) {
		log.Printf("preview release failed for %s: %v", handle, err)
	}
}

// URL returns the public path the preview is served from.
func (s *PreviewStore) URL(handle string) string {
	return "/static/previews/" + handle
}
