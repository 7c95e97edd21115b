package storage

import (
	"strings"
	"unicode"

	errs "canvasdl/pkg/errors"
)

// MaxNameLength is the longest path segment Sanitize produces, in runes
const MaxNameLength = 120

var reservedChars = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// Sanitize maps a remote display name to a single valid path segment.
// Directory names additionally lose any trailing periods.
func Sanitize(name string, isFile bool) (string, error) {
	runes := []rune(name)
	if len(runes) > MaxNameLength {
		runes = runes[:MaxNameLength]
	}
	if len(runes) == 0 {
		return "", errs.New(errs.KindInvalidInput, "sanitize", nil)
	}

	clean := strings.TrimSpace(reservedChars.Replace(string(runes)))
	if !isFile {
		clean = strings.TrimRightFunc(clean, func(r rune) bool {
			return r == '.' || unicode.IsSpace(r)
		})
	}

	if clean == "" {
		return "", errs.New(errs.KindInvalidInput, "sanitize", nil)
	}
	return clean, nil
}

// SanitizeOr sanitizes name, falling back to fallback when name sanitizes
// to nothing. The fallback is sanitized too.
func SanitizeOr(name, fallback string, isFile bool) (string, error) {
	if clean, err := Sanitize(name, isFile); err == nil {
		return clean, nil
	}
	return Sanitize(fallback, isFile)
}
