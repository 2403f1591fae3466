// Package files keeps uploaded document bytes on disk.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store saves uploaded files under a base directory, one folder per document.
type Store struct {
	basePath string
}

// NewStore creates the base directory if missing.
func NewStore(basePath string) (*Store, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save writes r to the document's folder and returns the number of bytes written.
func (s *Store) Save(docID, filename string, r io.Reader) (int64, error) {
	targetDir := filepath.Join(s.basePath, docID)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return 0, fmt.Errorf("create document dir: %w", err)
	}
	out, err := os.Create(filepath.Join(targetDir, SafeFilename(filename)))
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	n, err := io.Copy(out, r)
	if err != nil {
		return n, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

// Delete removes all files for a document.
func (s *Store) Delete(docID string) error {
	targetDir := filepath.Join(s.basePath, docID)
	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(targetDir)
}

// SafeFilename strips directories from an uploaded name.
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}
