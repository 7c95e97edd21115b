package canvas

import (
	"fmt"
	"net/url"
)

const (
	// APIPrefix is prepended to every REST path
	APIPrefix = "/api/v1"

	// DefaultPerPage is the page size requested for list endpoints
	DefaultPerPage = 100

	// MaxPerPage is the largest page size the API honours
	MaxPerPage = 100
)

// CurrentUserPath returns the path of the token owner's profile
func CurrentUserPath() string {
	return APIPrefix + "/users/self"
}

// CoursesPath returns the path listing the user's courses
func CoursesPath() string {
	return APIPrefix + "/courses"
}

// ModulesPath returns the path listing a course's modules
func ModulesPath(courseID int64) string {
	return fmt.Sprintf("%s/courses/%d/modules", APIPrefix, courseID)
}

// ModuleItemsPath returns the path listing a module's items
func ModuleItemsPath(courseID, moduleID int64) string {
	return fmt.Sprintf("%s/courses/%d/modules/%d/items", APIPrefix, courseID, moduleID)
}

// FilePath returns the path of a single course file
func FilePath(courseID, fileID int64) string {
	return fmt.Sprintf("%s/courses/%d/files/%d", APIPrefix, courseID, fileID)
}

// PagePath returns the path of a wiki page by url slug
func PagePath(courseID int64, pageURL string) string {
	return fmt.Sprintf("%s/courses/%d/pages/%s", APIPrefix, courseID, url.PathEscape(pageURL))
}

// AssignmentsPath returns the path listing a course's assignments
func AssignmentsPath(courseID int64) string {
	return fmt.Sprintf("%s/courses/%d/assignments", APIPrefix, courseID)
}

// AssignmentPath returns the path of a single assignment
func AssignmentPath(courseID, assignmentID int64) string {
	return fmt.Sprintf("%s/courses/%d/assignments/%d", APIPrefix, courseID, assignmentID)
}

// FoldersPath returns the path listing every folder of a course
func FoldersPath(courseID int64) string {
	return fmt.Sprintf("%s/courses/%d/folders", APIPrefix, courseID)
}

// FolderFilesPath returns the path listing the files directly in a folder
func FolderFilesPath(folderID int64) string {
	return fmt.Sprintf("%s/folders/%d/files", APIPrefix, folderID)
}

// ClampPerPage keeps a requested page size within the accepted range
func ClampPerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}
