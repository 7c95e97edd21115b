package mirror

import (
	"context"

	"canvasdl/pkg/canvas"
)

// API is the part of the Canvas client the mirror reads from
type API interface {
	CurrentUser(ctx context.Context) (*canvas.User, error)
	ListCourses(ctx context.Context) ([]canvas.Course, error)
	ListModules(ctx context.Context, courseID int64) ([]canvas.Module, error)
	ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]canvas.ModuleItem, error)
	GetFile(ctx context.Context, courseID, fileID int64) (*canvas.File, error)
	GetPage(ctx context.Context, courseID int64, pageURL string) (*canvas.Page, error)
	ListAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error)
	GetAssignment(ctx context.Context, courseID, assignmentID int64) (*canvas.Assignment, error)
	ListFolders(ctx context.Context, courseID int64) ([]canvas.Folder, error)
	ListFolderFiles(ctx context.Context, folderID int64) ([]canvas.File, error)
}

// Transferer writes a remote file's content to a local path
type Transferer interface {
	Download(ctx context.Context, file *canvas.File, dest string) (int64, error)
}

// Client is a Canvas client that can both read the API and transfer files
type Client interface {
	API
	Transferer
}

// SkipStore is the durable record of completed courses
type SkipStore interface {
	Load() (map[int64]struct{}, error)
	MarkDone(id int64) error
}

// Reporter receives progress as the mirror runs. Implementations must not
// block for long; they are called inline.
type Reporter interface {
	CourseStarted(course canvas.Course, name string)
	CourseSkipped(course canvas.Course, reason SkipReason)
	CourseFinished(course canvas.Course, stats Stats)
	FileFinished(course canvas.Course, result FileResult)
	Problem(course canvas.Course, what string, err error)
}

// Compile-time check that the real client satisfies Client
var _ Client = (*canvas.Client)(nil)
