package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// MakeDir creates a directory with all parent directories
func MakeDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// DeleteFile removes a file, ignoring files that are already gone
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MoveFile moves or renames a file
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file from %s to %s: %w", src, dst, err)
	}
	return nil
}

// CreateTemp opens a scratch file next to dst so a later MoveFile stays on
// the same filesystem.
func CreateTemp(dst string) (*os.File, error) {
	dir := filepath.Dir(dst)
	if err := MakeDir(dir); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", dir, err)
	}
	return os.CreateTemp(dir, filepath.Base(dst)+".*.tmp")
}
