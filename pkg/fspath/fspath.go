// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath and the atomic
// file replacement used by every on-disk store.
package fspath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/modcurator/modcurator/pkg/types"
)

// Join wraps filepath.Join for FilesystemPath.
func Join(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Abs wraps filepath.Abs for FilesystemPath.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Exists reports whether p exists. Errors other than "not exist" are returned.
func Exists(p types.FilesystemPath) (bool, error) {
	_, err := os.Stat(string(p))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// IsDir reports whether p exists and is a directory.
func IsDir(p types.FilesystemPath) bool {
	st, err := os.Stat(string(p))
	return err == nil && st.IsDir()
}

// WriteFileAtomic replaces p with data. The parent directory is created when
// missing and the content is written to a sibling temp file that is renamed
// over p, so readers never observe a partial file.
func WriteFileAtomic(p types.FilesystemPath, data []byte, perm fs.FileMode) error {
	if ok, errs := p.IsValid(); !ok {
		return errs[0]
	}
	dir := filepath.Dir(string(p))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(string(p))+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", p, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod %s: %w", p, err)
	}
	if err := os.Rename(tmpPath, string(p)); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to rename %s: %w", p, err)
	}
	return nil
}
