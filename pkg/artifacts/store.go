package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// Store is a content-addressed byte store rooted at a fixed directory, per
// spec.md §4.3 and §6's authoritative filesystem layout. Writing to a path
// that already holds different content is a conflict, never a silent
// overwrite; writing the same bytes again is a no-op success.
type Store struct {
	root string
}

// NewStore returns a Store rooted at root. The directory is created lazily
// on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Path joins root with the given relative path components.
func (s *Store) Path(elem ...string) string {
	return filepath.Join(append([]string{s.root}, elem...)...)
}

// WriteFile writes data to path, creating parent directories as needed. If
// path already exists, the existing content's hash must equal the new
// content's hash, otherwise ErrConflict is returned — records are never
// mutated in place.
func (s *Store) WriteFile(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil {
		if HashBytes(existing) != HashBytes(data) {
			return fmt.Errorf("%w: %s already exists with different content", errs.ErrConflict, path)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// ReadFile reads path, returning ErrNotFound if it doesn't exist.
func (s *Store) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, path)
	}
	return data, err
}

// HashFile returns the hex SHA-256 digest of the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errs.ErrNotFound, path)
		}
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes returns the hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileSize returns the size in bytes of the file at path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", errs.ErrNotFound, path)
		}
		return 0, err
	}
	return info.Size(), nil
}
