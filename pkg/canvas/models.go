package canvas

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	errs "canvasdl/pkg/errors"
)

// User is the account the API token belongs to
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course is a single course the user is enrolled in
type Course struct {
	ID                     int64  `json:"id"`
	Name                   string `json:"name"`
	CourseCode             string `json:"course_code"`
	WorkflowState          string `json:"workflow_state"`
	AccessRestrictedByDate bool   `json:"access_restricted_by_date"`
}

// DisplayName returns the course name, or a CourseUnavailable error when
// the API withholds the course metadata.
func (c *Course) DisplayName() (string, error) {
	if c.AccessRestrictedByDate || strings.TrimSpace(c.Name) == "" {
		return "", errs.New(errs.KindCourseUnavailable, fmt.Sprintf("course %d", c.ID), nil)
	}
	return c.Name, nil
}

// Module is an ordered group of items within a course
type Module struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Module item types reported by the API
const (
	ItemTypeFile = "File"
	ItemTypePage = "Page"
)

// ModuleItem is a single entry of a module as returned by the API. Use Ref
// to get at the kind-specific fields.
type ModuleItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	ContentID int64  `json:"content_id"`
	PageURL   string `json:"page_url"`
}

// ItemRef is the kind-specific view of a module item. It is implemented
// only by FileItem, PageItem and OtherItem.
type ItemRef interface {
	itemRef()
}

// FileItem refers to a course file by id
type FileItem struct {
	ContentID int64
}

// PageItem refers to a wiki page by its url slug
type PageItem struct {
	PageURL string
}

// OtherItem is any item kind that carries no downloadable content
type OtherItem struct {
	Type string
}

func (FileItem) itemRef()  {}
func (PageItem) itemRef()  {}
func (OtherItem) itemRef() {}

// Ref returns the kind-specific view of the item
func (m *ModuleItem) Ref() ItemRef {
	switch m.Type {
	case ItemTypeFile:
		if m.ContentID > 0 {
			return FileItem{ContentID: m.ContentID}
		}
	case ItemTypePage:
		if m.PageURL != "" {
			return PageItem{PageURL: m.PageURL}
		}
	}
	return OtherItem{Type: m.Type}
}

// Page is a course wiki page
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Assignment is a gradable item. Description is only populated when the
// assignment is fetched individually.
type Assignment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
}

// IDFromHTMLURL derives the assignment id from the last path segment of
// its HTML URL.
func (a *Assignment) IDFromHTMLURL() (int64, error) {
	u, err := url.Parse(a.HTMLURL)
	if err != nil {
		return 0, errs.New(errs.KindInvalidInput, "assignment html_url", err)
	}
	segments := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	id, err := strconv.ParseInt(segments[len(segments)-1], 10, 64)
	if err != nil {
		return 0, errs.New(errs.KindInvalidInput, "assignment html_url", fmt.Errorf("no id in %q", a.HTMLURL))
	}
	return id, nil
}

// Folder is a file storage container in a course
type Folder struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Hidden   bool   `json:"hidden"`
}

// PathSegments splits the folder's full name into its hierarchy, for
// example "course files/Lectures" into ["course files", "Lectures"].
func (f *Folder) PathSegments() []string {
	name := f.FullName
	if name == "" {
		name = f.Name
	}
	var segments []string
	for _, s := range strings.Split(name, "/") {
		if strings.TrimSpace(s) != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// File is a downloadable course file
type File struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content-type"`
	Locked      bool   `json:"locked"`
}

// Identity is the key used to recognise the same file reached through
// different paths of a course.
func (f *File) Identity() string {
	return f.URL
}
