// Package links finds references to course files inside rich-text HTML,
// such as page bodies and assignment descriptions.
package links

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	filesSegment   = "/files/"
	verifierMarker = "?verifier="
	wrapMarker     = "?wrap="
)

// FileRef is a file id resolved from a link, together with the link itself
type FileRef struct {
	ID   int64
	Href string
}

// ExtractFileIDs returns the file references found in anchor and embed
// elements of html, in document order and without repeats. Links whose
// shape is not recognised are skipped.
func ExtractFileIDs(html string) ([]FileRef, error) {
	if strings.TrimSpace(html) == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var refs []FileRef
	seen := make(map[int64]bool)
	doc.Find("a[href], embed[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		id, ok := ResolveFileID(href)
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		refs = append(refs, FileRef{ID: id, Href: href})
	})

	return refs, nil
}

// ResolveFileID extracts the file id from a single href.
//
//	/courses/1/files/123                     -> 123
//	/courses/1/files/123?verifier=abc        -> 123
//	/courses/1/files/456/download?verifier=x -> 456
//	/courses/1/files/789?wrap=1              -> skipped
func ResolveFileID(href string) (int64, bool) {
	if !strings.Contains(href, filesSegment) {
		return 0, false
	}

	segments := strings.Split(href, "/")
	candidate := segments[len(segments)-1]

	if !isPlainID(candidate) {
		switch {
		case strings.Contains(candidate, verifierMarker):
			candidate = candidate[:strings.Index(candidate, "?")]
			if candidate == "download" || candidate == "preview" {
				if len(segments) < 2 {
					return 0, false
				}
				candidate = segments[len(segments)-2]
			}
		case strings.Contains(candidate, wrapMarker):
			return 0, false
		default:
			return 0, false
		}
	}

	id, err := strconv.ParseInt(candidate, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isPlainID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
