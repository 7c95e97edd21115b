package mirror

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"canvasdl/pkg/canvas"
	errs "canvasdl/pkg/errors"
	"canvasdl/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(api *fakeCanvas, root string, skip SkipStore, ignore bool) (*Driver, *recordingReporter) {
	reporter := newRecordingReporter()
	opts := Options{
		Root:           root,
		IgnoreSkipList: ignore,
		Reporter:       reporter,
		Logger:         logger.NewTestLogger(),
	}
	if skip != nil {
		opts.SkipList = skip
	}
	return NewDriver(api, opts), reporter
}

func TestDriverRecordsCompletedCourses(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	api.courses = append(api.courses,
		canvas.Course{ID: 200, AccessRestrictedByDate: true},
		canvas.Course{ID: 300, Name: "Empty Seminar"},
	)
	skip := newMemorySkipList()

	driver, reporter := newTestDriver(api, t.TempDir(), skip, false)
	summary, err := driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{courseID, 300}, skip.appends, "unavailable courses are not recorded")
	assert.Equal(t, 2, summary.CoursesProcessed)
	assert.Equal(t, 1, summary.CoursesUnavailable)
	assert.Equal(t, 3, summary.Files.Downloaded)
	assert.Equal(t, "Test Student", summary.UserName)
	assert.Equal(t, SkipUnavailable, reporter.skipped[200])
}

func TestDriverSkipsRecordedCourses(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	skip := newMemorySkipList(courseID)

	driver, reporter := newTestDriver(api, t.TempDir(), skip, false)
	summary, err := driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, api.downloadCount())
	assert.Equal(t, 1, summary.CoursesSkipped)
	assert.Equal(t, SkipRecorded, reporter.skipped[courseID])
	assert.Empty(t, skip.appends)
}

func TestDriverIgnoreSkipList(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	skip := newMemorySkipList(courseID)

	driver, _ := newTestDriver(api, t.TempDir(), skip, true)
	summary, err := driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, skip.loads)
	assert.Equal(t, 1, summary.CoursesProcessed)
	assert.Equal(t, []int64{courseID}, skip.appends)
}

func TestDriverWithoutSkipList(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	root := t.TempDir()

	driver, _ := newTestDriver(api, root, nil, false)
	summary, err := driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CoursesProcessed)
	assert.FileExists(t, filepath.Join(root, "Intro to Biology", ModulesDir, "Week 1", "Syllabus.pdf"))
}

func TestDriverDoesNotRecordIncompleteCourses(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	outage := errs.New(errs.KindNetwork, "request", errors.New("connection reset"))
	for _, op := range []string{"modules", "assignments", "folders"} {
		api.listErrors[op] = outage
	}
	skip := newMemorySkipList()
	root := t.TempDir()

	driver, reporter := newTestDriver(api, root, skip, false)
	summary, err := driver.Run(context.Background())
	require.NoError(t, err, "an incomplete course does not stop the run")

	assert.Empty(t, skip.appends)
	assert.Equal(t, 0, summary.CoursesProcessed)
	assert.Equal(t, 1, summary.CoursesFailed)
	assert.Contains(t, reporter.problems, "mirror course")

	// Once the API answers again the course is walked and recorded
	api.listErrors = map[string]error{}
	driver, _ = newTestDriver(api, root, skip, false)
	summary, err = driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{courseID}, skip.appends)
	assert.Equal(t, 3, summary.Files.Downloaded)
}

func TestDriverContinuesAfterFileFailures(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	api.downloadErr[1] = errs.FromStatus("download file", 404)
	api.courses = append(api.courses, canvas.Course{ID: 300, Name: "Second"})
	api.modules[300] = []canvas.Module{{ID: 31, Name: "Only"}}
	api.items[31] = []canvas.ModuleItem{{Type: canvas.ItemTypeFile, ContentID: 9}}
	api.addFile(9, "Second.pdf")
	skip := newMemorySkipList()

	driver, _ := newTestDriver(api, t.TempDir(), skip, false)
	summary, err := driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Files.Failed)
	assert.Equal(t, 3, summary.Files.Downloaded)
	assert.Equal(t, []int64{courseID, 300}, skip.appends)
}

func TestDriverStopsWhenSkipListCannotBeWritten(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	api.courses = append(api.courses, canvas.Course{ID: 300, Name: "Second"})
	skip := newMemorySkipList()
	skip.failOn = courseID

	driver, reporter := newTestDriver(api, t.TempDir(), skip, false)
	_, err := driver.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, []int64{courseID}, reporter.started, "next course never begins")
}

func TestDriverCourseListingFailure(t *testing.T) {
	api := newFakeCanvas()
	api.listErrors["courses"] = errs.FromStatus("list courses", 401)

	driver, _ := newTestDriver(api, t.TempDir(), newMemorySkipList(), false)
	_, err := driver.Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestDriverCancellation(t *testing.T) {
	api := newFakeCanvas()
	sampleCourse(api)
	skip := newMemorySkipList()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver, _ := newTestDriver(api, t.TempDir(), skip, false)
	_, err := driver.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, skip.appends, "interrupted course is not recorded")
}
