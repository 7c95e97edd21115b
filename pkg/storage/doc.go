// Package storage provides the local side of the course mirror.
//
// The storage package handles:
//   - Turning remote display names into valid path segments (Sanitize)
//   - Tracking files already transferred within a course (Ledger)
//   - Saving files with atomic write operations (SaveFile)
//
// SaveFile writes to a ".part" file first and renames it into place, so the
// existence of a file at its final path always means a complete transfer.
// That property is what lets a later run skip files that are already on disk.
//
// Usage:
//
//	name, err := storage.Sanitize(file.DisplayName, true)
//	if err != nil {
//	    return err
//	}
//	path := filepath.Join(dir, name)
//	if !storage.Exists(path) {
//	    _, err = storage.SaveFile(body, path)
//	}
package storage
