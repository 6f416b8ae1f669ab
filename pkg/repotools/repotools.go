// Package repotools implements the read-only repo.list_files and
// repo.read_text tools. Both are strictly read-only: no registry or ledger
// interaction of their own.
package repotools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// ListFiles walks root and returns every regular file's path relative to
// root, sorted lexicographically for determinism. Dotfiles and directories
// starting with "." (e.g. ".adam_os", ".git") are skipped.
func ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if strings.HasPrefix(filepath.Base(rel), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadText reads path relative to root as UTF-8 text. Attempts to escape
// root via ".." are rejected.
func ReadText(root, relPath string) (string, error) {
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: path %q escapes repo root", errs.ErrValidation, relPath)
	}

	full := filepath.Join(root, cleaned)
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errs.ErrNotFound, relPath)
		}
		return "", err
	}
	return string(data), nil
}
