package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"canvasdl/pkg/canvas"
	errs "canvasdl/pkg/errors"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAcquirer(api *fakeCanvas, maxSize int64) (*Acquirer, *logger.TestLogger) {
	tl := logger.NewTestLogger()
	return NewAcquirer(api, maxSize, tl), tl
}

func TestAcquireDownloadsAndRecords(t *testing.T) {
	api := newFakeCanvas()
	file := api.addFile(1, "Syllabus.pdf")
	acquirer, tl := newTestAcquirer(api, 0)
	ledger := storage.NewLedger()
	dir := filepath.Join(t.TempDir(), "Course", "Modules", "Week 1")

	result, err := acquirer.Acquire(context.Background(), 10, file, dir, ledger)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDownloaded, result.Outcome)
	assert.Equal(t, filepath.Join(dir, "Syllabus.pdf"), result.Path)
	assert.FileExists(t, result.Path)
	assert.True(t, ledger.ShouldSkip(file.Identity()))
	assert.Equal(t, 1, api.downloadCount())
	assert.True(t, tl.HasMessage("File downloaded"))
}

func TestAcquireSkipsLedgerEntries(t *testing.T) {
	api := newFakeCanvas()
	file := api.addFile(1, "Syllabus.pdf")
	acquirer, _ := newTestAcquirer(api, 0)
	ledger := storage.NewLedger()
	ledger.Record(file.Identity())

	result, err := acquirer.Acquire(context.Background(), 10, file, t.TempDir(), ledger)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicate, result.Outcome)
	assert.Equal(t, 0, api.downloadCount())
}

func TestAcquireSkipsExistingPath(t *testing.T) {
	api := newFakeCanvas()
	file := api.addFile(1, "Syllabus.pdf")
	acquirer, _ := newTestAcquirer(api, 0)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Syllabus.pdf"), []byte("old"), 0644))

	result, err := acquirer.Acquire(context.Background(), 10, file, dir, storage.NewLedger())
	require.NoError(t, err)

	assert.Equal(t, OutcomeExists, result.Outcome)
	assert.Equal(t, 0, api.downloadCount())
	data, _ := os.ReadFile(filepath.Join(dir, "Syllabus.pdf"))
	assert.Equal(t, "old", string(data), "existing file is left alone")
}

func TestAcquireSkipsVideos(t *testing.T) {
	api := newFakeCanvas()
	file := api.addFile(1, "Lecture.MP4")
	acquirer, _ := newTestAcquirer(api, 0)
	dir := filepath.Join(t.TempDir(), "never-created")

	result, err := acquirer.Acquire(context.Background(), 10, file, dir, storage.NewLedger())
	require.NoError(t, err)

	assert.Equal(t, OutcomeIneligible, result.Outcome)
	assert.Equal(t, 0, api.downloadCount())
	assert.NoDirExists(t, dir)
}

func TestAcquireSanitizesName(t *testing.T) {
	api := newFakeCanvas()
	file := api.addFile(1, "Lab 2: results?.csv")
	acquirer, _ := newTestAcquirer(api, 0)
	dir := t.TempDir()

	result, err := acquirer.Acquire(context.Background(), 10, file, dir, storage.NewLedger())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Lab 2_ results_.csv"), result.Path)
}

func TestAcquireFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(api *fakeCanvas, file *canvas.File)
		maxSize  int64
		wantKind errs.Kind
	}{
		{
			name:     "remote file gone",
			setup:    func(api *fakeCanvas, file *canvas.File) { api.downloadErr[file.ID] = errs.FromStatus("download file", 404) },
			wantKind: errs.KindResourceMissing,
		},
		{
			name: "disk full",
			setup: func(api *fakeCanvas, file *canvas.File) {
				api.downloadErr[file.ID] = &os.PathError{Op: "write", Path: "x", Err: syscall.ENOSPC}
			},
			wantKind: errs.KindInsufficientSpace,
		},
		{
			name:     "too large",
			setup:    func(api *fakeCanvas, file *canvas.File) { file.Size = 5000 },
			maxSize:  1000,
			wantKind: errs.KindInsufficientSpace,
		},
		{
			name:     "locked file without url",
			setup:    func(api *fakeCanvas, file *canvas.File) { file.URL = "" },
			wantKind: errs.KindResourceMissing,
		},
		{
			name:     "access denied maps to unknown",
			setup:    func(api *fakeCanvas, file *canvas.File) { api.downloadErr[file.ID] = errs.FromStatus("download file", 403) },
			wantKind: errs.KindUnknown,
		},
		{
			name:     "anything else",
			setup:    func(api *fakeCanvas, file *canvas.File) { api.downloadErr[file.ID] = errors.New("tls handshake timeout") },
			wantKind: errs.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeCanvas()
			file := api.addFile(1, "Notes.pdf")
			tt.setup(api, file)
			acquirer, tl := newTestAcquirer(api, tt.maxSize)
			ledger := storage.NewLedger()

			result, err := acquirer.Acquire(context.Background(), 10, file, t.TempDir(), ledger)
			require.Error(t, err)

			assert.Equal(t, OutcomeFailed, result.Outcome)
			assert.Equal(t, tt.wantKind, errs.Classify(err))
			assert.Equal(t, 0, ledger.Len(), "failed files are not recorded")
			assert.NotEmpty(t, tl.GetMessagesByLevel("ERROR"))
		})
	}
}

func TestAcquireHonoursCancellation(t *testing.T) {
	api := newFakeCanvas()
	file := api.addFile(1, "Notes.pdf")
	acquirer, _ := newTestAcquirer(api, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := acquirer.Acquire(ctx, 10, file, t.TempDir(), storage.NewLedger())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, api.downloadCount())
}

func TestLocalNameFallbacks(t *testing.T) {
	name, err := LocalName(&canvas.File{ID: 4, Filename: "raw.txt"})
	require.NoError(t, err)
	assert.Equal(t, "raw.txt", name)

	name, err = LocalName(&canvas.File{ID: 4, DisplayName: "   "})
	require.NoError(t, err)
	assert.Equal(t, "file 4", name)
}
