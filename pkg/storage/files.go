package storage

import (
	"fmt"
	"io"
	"os"
)

// partSuffix marks a file that is still being written
const partSuffix = ".part"

// Exists reports whether any filesystem entry is present at path
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// EnsureDir creates dir and any missing parents
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// SaveFile writes r to path through a temporary file that is renamed into
// place only after every byte has been written and synced. A failed write never leaves
// anything at path. It returns the number of bytes written.
func SaveFile(r io.Reader, path string) (int64, error) {
	tempFile := path + partSuffix
	out, err := os.Create(tempFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	n, err := io.Copy(out, r)
	if err == nil {
		if err = out.Sync(); err != nil {
			out.Close()
			os.Remove(tempFile)
			return n, fmt.Errorf("failed to sync file: %w", err)
		}
	}
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to write file data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return n, nil
}
