package mirror

import (
	"context"
	"fmt"
	"os"
	"sync"

	"canvasdl/pkg/canvas"
	errs "canvasdl/pkg/errors"
)

// fakeCanvas is an in-memory Client. Lookups of unknown objects return
// ResourceMissing; listErrors injects failures by operation name.
type fakeCanvas struct {
	mu sync.Mutex

	courses     []canvas.Course
	modules     map[int64][]canvas.Module
	items       map[int64][]canvas.ModuleItem
	files       map[int64]*canvas.File
	pages       map[string]*canvas.Page
	assignments map[int64][]canvas.Assignment
	details     map[int64]*canvas.Assignment
	folders     map[int64][]canvas.Folder
	folderFiles map[int64][]canvas.File

	listErrors    map[string]error
	downloadErr   map[int64]error
	downloads     []string
	folderListing []int64
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{
		modules:     map[int64][]canvas.Module{},
		items:       map[int64][]canvas.ModuleItem{},
		files:       map[int64]*canvas.File{},
		pages:       map[string]*canvas.Page{},
		assignments: map[int64][]canvas.Assignment{},
		details:     map[int64]*canvas.Assignment{},
		folders:     map[int64][]canvas.Folder{},
		folderFiles: map[int64][]canvas.File{},
		listErrors:  map[string]error{},
		downloadErr: map[int64]error{},
	}
}

func (f *fakeCanvas) addFile(id int64, name string) *canvas.File {
	file := &canvas.File{
		ID:          id,
		DisplayName: name,
		Filename:    name,
		URL:         fmt.Sprintf("https://canvas.test/files/%d/download?verifier=v%d", id, id),
		Size:        int64(len(name)),
	}
	f.files[id] = file
	return file
}

func (f *fakeCanvas) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloads)
}

func (f *fakeCanvas) CurrentUser(ctx context.Context) (*canvas.User, error) {
	return &canvas.User{ID: 1, Name: "Test Student"}, nil
}

func (f *fakeCanvas) ListCourses(ctx context.Context) ([]canvas.Course, error) {
	if err := f.listErrors["courses"]; err != nil {
		return nil, err
	}
	return f.courses, nil
}

func (f *fakeCanvas) ListModules(ctx context.Context, courseID int64) ([]canvas.Module, error) {
	if err := f.listErrors["modules"]; err != nil {
		return nil, err
	}
	return f.modules[courseID], nil
}

func (f *fakeCanvas) ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]canvas.ModuleItem, error) {
	return f.items[moduleID], nil
}

func (f *fakeCanvas) GetFile(ctx context.Context, courseID, fileID int64) (*canvas.File, error) {
	file, ok := f.files[fileID]
	if !ok {
		return nil, errs.FromStatus("get file", 404)
	}
	copied := *file
	return &copied, nil
}

func (f *fakeCanvas) GetPage(ctx context.Context, courseID int64, pageURL string) (*canvas.Page, error) {
	page, ok := f.pages[pageURL]
	if !ok {
		return nil, errs.FromStatus("get page", 404)
	}
	return page, nil
}

func (f *fakeCanvas) ListAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error) {
	if err := f.listErrors["assignments"]; err != nil {
		return nil, err
	}
	return f.assignments[courseID], nil
}

func (f *fakeCanvas) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*canvas.Assignment, error) {
	a, ok := f.details[assignmentID]
	if !ok {
		return nil, errs.FromStatus("get assignment", 404)
	}
	return a, nil
}

func (f *fakeCanvas) ListFolders(ctx context.Context, courseID int64) ([]canvas.Folder, error) {
	if err := f.listErrors["folders"]; err != nil {
		return nil, err
	}
	return f.folders[courseID], nil
}

func (f *fakeCanvas) ListFolderFiles(ctx context.Context, folderID int64) ([]canvas.File, error) {
	f.mu.Lock()
	f.folderListing = append(f.folderListing, folderID)
	f.mu.Unlock()
	if err := f.listErrors[fmt.Sprintf("folder:%d", folderID)]; err != nil {
		return nil, err
	}
	return f.folderFiles[folderID], nil
}

func (f *fakeCanvas) Download(ctx context.Context, file *canvas.File, dest string) (int64, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, dest)
	f.mu.Unlock()
	if err := f.downloadErr[file.ID]; err != nil {
		return 0, err
	}
	data := []byte("content of " + file.DisplayName)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// recordingReporter captures reporter calls
type recordingReporter struct {
	started  []int64
	skipped  map[int64]SkipReason
	finished []int64
	files    []FileResult
	problems []string
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{skipped: map[int64]SkipReason{}}
}

func (r *recordingReporter) CourseStarted(c canvas.Course, name string) {
	r.started = append(r.started, c.ID)
}

func (r *recordingReporter) CourseSkipped(c canvas.Course, reason SkipReason) {
	r.skipped[c.ID] = reason
}

func (r *recordingReporter) CourseFinished(c canvas.Course, stats Stats) {
	r.finished = append(r.finished, c.ID)
}

func (r *recordingReporter) FileFinished(c canvas.Course, result FileResult) {
	r.files = append(r.files, result)
}

func (r *recordingReporter) Problem(c canvas.Course, what string, err error) {
	r.problems = append(r.problems, what)
}

// memorySkipList is an in-memory SkipStore
type memorySkipList struct {
	ids     map[int64]struct{}
	appends []int64
	loads   int
	failOn  int64
}

func newMemorySkipList(ids ...int64) *memorySkipList {
	s := &memorySkipList{ids: map[int64]struct{}{}}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *memorySkipList) Load() (map[int64]struct{}, error) {
	s.loads++
	out := make(map[int64]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *memorySkipList) MarkDone(id int64) error {
	if s.failOn == id {
		return fmt.Errorf("disk full")
	}
	s.ids[id] = struct{}{}
	s.appends = append(s.appends, id)
	return nil
}
