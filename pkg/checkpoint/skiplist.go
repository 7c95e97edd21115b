package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"canvasdl/pkg/logger"
)

// DefaultFileName is the skip list's file name inside the data directory
const DefaultFileName = "skip_courses.txt"

// SkipList is the durable record of courses whose materials have been
// fully processed. It is only ever appended to.
type SkipList struct {
	path   string
	logger logger.Logger
}

// NewSkipList creates a skip list backed by path
func NewSkipList(path string) *SkipList {
	return &SkipList{
		path:   path,
		logger: logger.GetLogger(),
	}
}

// NewDefaultSkipList creates a skip list in the user data directory
func NewDefaultSkipList() (*SkipList, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewSkipList(path), nil
}

// DefaultPath returns the skip list location in the user data directory
func DefaultPath() (string, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return "", fmt.Errorf("failed to get data directory: %w", err)
	}
	return filepath.Join(dataDir, DefaultFileName), nil
}

// SetLogger replaces the logger used for load warnings
func (s *SkipList) SetLogger(log logger.Logger) {
	s.logger = log
}

// Path returns the backing file path
func (s *SkipList) Path() string {
	return s.path
}

// Load reads every recorded course id. A missing file is created and
// treated as empty. Lines that are not integers are ignored with a warning.
func (s *SkipList) Load() (map[int64]struct{}, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create skip list directory: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open skip list: %w", err)
	}
	defer file.Close()

	ids := make(map[int64]struct{})
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			s.logger.WarnWithFields("Ignoring malformed skip list entry", map[string]interface{}{
				"path":  s.path,
				"line":  lineNo,
				"entry": line,
			})
			continue
		}
		ids[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skip list: %w", err)
	}

	s.logger.DebugWithFields("Skip list loaded", map[string]interface{}{
		"path":    s.path,
		"courses": len(ids),
	})

	return ids, nil
}

// MarkDone appends id and syncs the file before returning
func (s *SkipList) MarkDone(id int64) error {
	return s.Append(id)
}

// Append records every id in one write, synced to disk before returning.
// Duplicates are written as given.
func (s *SkipList) Append(ids ...int64) (err error) {
	if len(ids) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create skip list directory: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open skip list: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close skip list: %w", closeErr)
		}
	}()

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%d\n", id)
	}
	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append to skip list: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync skip list: %w", err)
	}
	return nil
}

// Sorted returns the recorded ids in ascending order
func Sorted(ids map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "canvasdl")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "canvasdl")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "canvasdl")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "canvasdl")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
