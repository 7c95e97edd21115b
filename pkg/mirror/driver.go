package mirror

import (
	"context"
	"errors"
	"fmt"

	"canvasdl/pkg/canvas"
	errs "canvasdl/pkg/errors"
	"canvasdl/pkg/logger"
)

// Driver runs the mirror over every course of the current user
type Driver struct {
	api          API
	materializer *Materializer
	skipList     SkipStore
	readSkipList bool
	reporter     Reporter
	logger       logger.Logger
}

// Options configures a Driver
type Options struct {
	// Root is the local directory course trees are created in
	Root string
	// MaxFileSize limits single files in bytes; zero means unlimited
	MaxFileSize int64
	// SkipList records completed courses. Nil disables skip tracking
	// entirely, as in interactive runs.
	SkipList SkipStore
	// IgnoreSkipList walks recorded courses again. Completed courses are
	// still appended to SkipList.
	IgnoreSkipList bool
	Reporter       Reporter
	Logger         logger.Logger
}

// NewDriver wires the acquirer, materializer and driver for client
func NewDriver(client Client, opts Options) *Driver {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	acquirer := NewAcquirer(client, opts.MaxFileSize, log)
	return &Driver{
		api:          client,
		materializer: NewMaterializer(client, acquirer, opts.Root, reporter, log),
		skipList:     opts.SkipList,
		readSkipList: opts.SkipList != nil && !opts.IgnoreSkipList,
		reporter:     reporter,
		logger:       log,
	}
}

// Run mirrors every course that is not already recorded in the skip list.
// Failures inside a course never stop the run; a course that could not be
// walked to the end is not recorded. Run returns early with an error when
// the user or course listing cannot be read, the skip list cannot be
// written, or ctx is done. The summary is valid in every case.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	user, err := d.api.CurrentUser(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to resolve current user: %w", err)
	}
	summary.UserName = user.Name
	d.logger.InfoWithFields("Authenticated", map[string]interface{}{
		"user_id": user.ID,
		"user":    user.Name,
	})

	recorded := map[int64]struct{}{}
	if d.readSkipList {
		recorded, err = d.skipList.Load()
		if err != nil {
			return summary, fmt.Errorf("failed to load skip list: %w", err)
		}
	}

	courses, err := d.api.ListCourses(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list courses: %w", err)
	}
	d.logger.InfoWithFields("Courses found", map[string]interface{}{
		"courses":  len(courses),
		"recorded": len(recorded),
	})

	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if _, done := recorded[course.ID]; done {
			summary.CoursesSkipped++
			d.reporter.CourseSkipped(course, SkipRecorded)
			d.logger.DebugWithFields("Skipping recorded course", map[string]interface{}{
				"course_id": course.ID,
			})
			continue
		}

		if err := d.runCourse(ctx, course, summary); err != nil {
			return summary, err
		}
	}

	d.logger.InfoWithFields("Run finished", map[string]interface{}{
		"courses_processed":   summary.CoursesProcessed,
		"courses_skipped":     summary.CoursesSkipped,
		"courses_unavailable": summary.CoursesUnavailable,
		"courses_failed":      summary.CoursesFailed,
		"files_downloaded":    summary.Files.Downloaded,
		"files_skipped":       summary.Files.Skipped(),
		"files_failed":        summary.Files.Failed,
	})
	return summary, nil
}

// runCourse materializes one course and records it when done. Only errors
// that must stop the run are returned.
func (d *Driver) runCourse(ctx context.Context, course canvas.Course, summary *Summary) error {
	stats, err := d.materializer.Materialize(ctx, course)
	summary.Files.Merge(stats)

	switch {
	case err == nil:
	case errors.Is(err, errs.ErrCourseUnavailable):
		summary.CoursesUnavailable++
		d.reporter.CourseSkipped(course, SkipUnavailable)
		d.logger.DebugWithFields("Skipping unavailable course", map[string]interface{}{
			"course_id": course.ID,
		})
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		summary.CoursesFailed++
		d.reporter.Problem(course, "mirror course", err)
		d.logger.WithError(err).ErrorWithFields("Course could not be mirrored", map[string]interface{}{
			"course_id": course.ID,
		})
		return nil
	}

	summary.CoursesProcessed++
	if d.skipList == nil {
		return nil
	}
	if err := d.skipList.MarkDone(course.ID); err != nil {
		return fmt.Errorf("failed to record course %d: %w", course.ID, err)
	}
	return nil
}
