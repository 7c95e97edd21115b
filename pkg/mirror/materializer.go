package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"canvasdl/pkg/canvas"
	errs "canvasdl/pkg/errors"
	"canvasdl/pkg/links"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/storage"
)

// Fixed category directories under each course root
const (
	ModulesDir     = "Modules"
	AssignmentsDir = "Assignments"
)

// Materializer mirrors a single course into the local tree
type Materializer struct {
	api      API
	acquirer *Acquirer
	root     string
	reporter Reporter
	logger   logger.Logger
}

// NewMaterializer creates a Materializer writing below root
func NewMaterializer(api API, acquirer *Acquirer, root string, reporter Reporter, log logger.Logger) *Materializer {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Materializer{
		api:      api,
		acquirer: acquirer,
		root:     root,
		reporter: reporter,
		logger:   log,
	}
}

// courseWalk is the state of one course traversal
type courseWalk struct {
	*Materializer
	course canvas.Course
	dir    string
	ledger *storage.Ledger
	log    logger.Logger
	stats  Stats

	// incomplete holds the first listing failure that may succeed on a
	// later run
	incomplete error
}

// Materialize walks modules, assignments and folders of course and
// acquires every file they lead to. Per-file and per-listing failures are
// reported and do not stop the walk. A course whose metadata is withheld
// returns an error of kind CourseUnavailable without touching the disk.
// When a listing failed for a reason other than missing access or a
// missing object, the walk still finishes but the first such failure is
// returned so the course is not recorded as done.
func (m *Materializer) Materialize(ctx context.Context, course canvas.Course) (Stats, error) {
	name, err := course.DisplayName()
	if err != nil {
		return Stats{}, err
	}

	dirName, err := storage.SanitizeOr(name, fmt.Sprintf("course %d", course.ID), false)
	if err != nil {
		return Stats{}, err
	}

	w := &courseWalk{
		Materializer: m,
		course:       course,
		dir:          filepath.Join(m.root, dirName),
		ledger:       storage.NewLedger(),
		log: m.logger.WithFields(map[string]interface{}{
			"course_id": course.ID,
			"course":    name,
		}),
	}

	if err := storage.EnsureDir(w.dir); err != nil {
		return Stats{}, errs.New(errs.Classify(err), "create course directory", err)
	}

	m.reporter.CourseStarted(course, name)
	w.log.InfoWithFields("Mirroring course", map[string]interface{}{
		"path": w.dir,
	})

	for _, step := range []func(context.Context) error{w.modules, w.assignments, w.folders} {
		if err := step(ctx); err != nil {
			return w.stats, err
		}
	}

	if w.incomplete != nil {
		return w.stats, errs.New(errs.Classify(w.incomplete), "mirror course", w.incomplete)
	}

	m.reporter.CourseFinished(course, w.stats)
	w.log.InfoWithFields("Course finished", map[string]interface{}{
		"downloaded": w.stats.Downloaded,
		"skipped":    w.stats.Skipped(),
		"failed":     w.stats.Failed,
	})
	return w.stats, nil
}

// modules acquires module files and files linked from module pages
func (w *courseWalk) modules(ctx context.Context) error {
	modules, err := w.api.ListModules(ctx, w.course.ID)
	if err != nil {
		return w.problem(ctx, "list modules", err)
	}

	for _, module := range modules {
		moduleName, err := storage.SanitizeOr(module.Name, fmt.Sprintf("module %d", module.ID), false)
		if err != nil {
			return err
		}
		dir := filepath.Join(w.dir, ModulesDir, moduleName)

		items, err := w.api.ListModuleItems(ctx, w.course.ID, module.ID)
		if err != nil {
			if err := w.problem(ctx, fmt.Sprintf("list items of module %q", module.Name), err); err != nil {
				return err
			}
			continue
		}

		for _, item := range items {
			var err error
			switch ref := item.Ref().(type) {
			case canvas.FileItem:
				err = w.acquireByID(ctx, ref.ContentID, dir)
			case canvas.PageItem:
				err = w.page(ctx, ref.PageURL, dir)
			case canvas.OtherItem:
				w.log.DebugWithFields("Ignoring module item", map[string]interface{}{
					"type":  ref.Type,
					"title": item.Title,
				})
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// page acquires the files linked from a wiki page body
func (w *courseWalk) page(ctx context.Context, pageURL, dir string) error {
	page, err := w.api.GetPage(ctx, w.course.ID, pageURL)
	if err != nil {
		return w.problem(ctx, fmt.Sprintf("get page %q", pageURL), err)
	}
	if page.Body == "" {
		return nil
	}
	return w.html(ctx, page.Body, dir, fmt.Sprintf("page %q", pageURL))
}

// assignments acquires the files linked from assignment descriptions. The
// listing does not carry descriptions, so each assignment is re-fetched.
func (w *courseWalk) assignments(ctx context.Context) error {
	assignments, err := w.api.ListAssignments(ctx, w.course.ID)
	if err != nil {
		return w.problem(ctx, "list assignments", err)
	}

	for _, listed := range assignments {
		id, err := listed.IDFromHTMLURL()
		if err != nil {
			w.log.WithError(err).DebugWithFields("Using listed assignment id", map[string]interface{}{
				"assignment_id": listed.ID,
			})
			id = listed.ID
		}

		assignment, err := w.api.GetAssignment(ctx, w.course.ID, id)
		if err != nil {
			if err := w.problem(ctx, fmt.Sprintf("get assignment %d", id), err); err != nil {
				return err
			}
			continue
		}
		if assignment.Description == "" {
			continue
		}

		assignmentName, err := storage.SanitizeOr(assignment.Name, fmt.Sprintf("assignment %d", id), false)
		if err != nil {
			return err
		}
		dir := filepath.Join(w.dir, AssignmentsDir, assignmentName)
		if err := w.html(ctx, assignment.Description, dir, fmt.Sprintf("assignment %q", assignment.Name)); err != nil {
			return err
		}
	}
	return nil
}

// folders sweeps the course file storage for anything not reached through
// modules or assignments. Each folder is mirrored under the course root by
// its full name. An authorization failure ends the sweep.
func (w *courseWalk) folders(ctx context.Context) error {
	folders, err := w.api.ListFolders(ctx, w.course.ID)
	if err != nil {
		return w.problem(ctx, "list folders", err)
	}

	for _, folder := range folders {
		dir, err := w.folderDir(folder)
		if err != nil {
			return err
		}

		files, err := w.api.ListFolderFiles(ctx, folder.ID)
		if err != nil {
			if perr := w.problem(ctx, fmt.Sprintf("list files of folder %q", folder.FullName), err); perr != nil {
				return perr
			}
			if errors.Is(err, errs.ErrAccessDenied) {
				w.log.Info("Folder access denied, skipping remaining folders")
				return nil
			}
			continue
		}

		for i := range files {
			if err := w.acquire(ctx, &files[i], dir); err != nil {
				return err
			}
		}
	}
	return nil
}

// folderDir maps a folder's full name to a directory below the course root
func (w *courseWalk) folderDir(folder canvas.Folder) (string, error) {
	segments := folder.PathSegments()
	if len(segments) == 0 {
		segments = []string{fmt.Sprintf("folder %d", folder.ID)}
	}

	parts := []string{w.dir}
	for _, segment := range segments {
		clean, err := storage.SanitizeOr(segment, fmt.Sprintf("folder %d", folder.ID), false)
		if err != nil {
			return "", err
		}
		parts = append(parts, clean)
	}
	return filepath.Join(parts...), nil
}

// html acquires every file referenced from a rich-text body
func (w *courseWalk) html(ctx context.Context, body, dir, source string) error {
	refs, err := links.ExtractFileIDs(body)
	if err != nil {
		return w.problem(ctx, "parse "+source, err)
	}
	for _, ref := range refs {
		if err := w.acquireByID(ctx, ref.ID, dir); err != nil {
			return err
		}
	}
	return nil
}

// acquireByID resolves a file id and acquires the file
func (w *courseWalk) acquireByID(ctx context.Context, fileID int64, dir string) error {
	file, err := w.api.GetFile(ctx, w.course.ID, fileID)
	if err != nil {
		w.stats.Failed++
		return w.problem(ctx, fmt.Sprintf("get file %d", fileID), err)
	}
	return w.acquire(ctx, file, dir)
}

// acquire hands one file to the Acquirer and records the result. Only
// cancellation is returned.
func (w *courseWalk) acquire(ctx context.Context, file *canvas.File, dir string) error {
	result, err := w.acquirer.Acquire(ctx, w.course.ID, file, dir, w.ledger)
	if err != nil && result.Outcome != OutcomeFailed {
		return err
	}
	w.stats.Record(result)
	w.reporter.FileFinished(w.course, result)
	return nil
}

// problem reports a non-fatal failure. It returns an error only when ctx is
// done, so callers can stop promptly on cancellation.
func (w *courseWalk) problem(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if w.incomplete == nil && !errors.Is(err, errs.ErrAccessDenied) && !errors.Is(err, errs.ErrResourceMissing) {
		w.incomplete = fmt.Errorf("%s: %w", what, err)
	}
	w.log.WithError(err).WarnWithFields("Could not "+what, map[string]interface{}{
		"kind": string(errs.Classify(err)),
	})
	w.reporter.Problem(w.course, what, err)
	return nil
}
