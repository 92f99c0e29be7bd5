package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CreateTemp opens a temporary file next to dst so a later Publish is an
// atomic rename on the same filesystem.
func CreateTemp(dst string) (*os.File, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %q: %w", dir, err)
	}
	return os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
}

// Publish renames tmp onto dst with regular file permissions.
func Publish(tmp, dst string) error {
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("publish %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// WriteStream copies r into dst through a temporary sibling. dst never holds a
// partially written file.
func WriteStream(dst string, r io.Reader) (int64, error) {
	tmp, err := CreateTemp(dst)
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = Publish(tmpPath, dst)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return written, err
	}
	return written, nil
}

// WriteFile writes data to dst through a temporary sibling.
func WriteFile(dst string, data []byte) error {
	tmp, err := CreateTemp(dst)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = Publish(tmpPath, dst)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
	}
	return err
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
