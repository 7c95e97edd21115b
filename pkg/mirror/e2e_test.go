package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"canvasdl/pkg/canvas"
	"canvasdl/pkg/checkpoint"
	"canvasdl/pkg/config"
	"canvasdl/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCanvasServer serves a single course shaped like sampleCourse, a
// restricted course, and a files area that also holds a video.
func newCanvasServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var downloads int32
	mux := http.NewServeMux()
	var server *httptest.Server

	reply := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(v))
	}
	file := func(id int64, name string) canvas.File {
		return canvas.File{
			ID:          id,
			DisplayName: name,
			Filename:    name,
			URL:         fmt.Sprintf("%s/files/%d/download?verifier=v", server.URL, id),
			Size:        32,
		}
	}

	mux.HandleFunc("/api/v1/users/self", func(w http.ResponseWriter, r *http.Request) {
		reply(w, canvas.User{ID: 1, Name: "Student"})
	})
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			reply(w, []canvas.Course{{ID: 8, AccessRestrictedByDate: true}})
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2&per_page=100>; rel="next"`, server.URL))
		reply(w, []canvas.Course{{ID: 5, Name: "Chemistry 101"}})
	})
	mux.HandleFunc("/api/v1/courses/5/modules", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []canvas.Module{{ID: 50, Name: "Unit 1"}})
	})
	mux.HandleFunc("/api/v1/courses/5/modules/50/items", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []canvas.ModuleItem{
			{ID: 1, Type: canvas.ItemTypeFile, ContentID: 501},
			{ID: 2, Type: canvas.ItemTypePage, PageURL: "reading"},
		})
	})
	mux.HandleFunc("/api/v1/courses/5/pages/reading", func(w http.ResponseWriter, r *http.Request) {
		reply(w, canvas.Page{URL: "reading", Body: `<embed href="/courses/5/files/502/preview?verifier=p">`})
	})
	mux.HandleFunc("/api/v1/courses/5/assignments", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []canvas.Assignment{{ID: 70, Name: "HW 1", HTMLURL: server.URL + "/courses/5/assignments/70"}})
	})
	mux.HandleFunc("/api/v1/courses/5/assignments/70", func(w http.ResponseWriter, r *http.Request) {
		reply(w, canvas.Assignment{ID: 70, Name: "HW 1", Description: `<a href="/courses/5/files/503?verifier=q">sheet</a> <a href="/courses/5/files/503?wrap=1">inline</a>`})
	})
	mux.HandleFunc("/api/v1/courses/5/folders", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []canvas.Folder{{ID: 90, Name: "course files", FullName: "course files"}})
	})
	mux.HandleFunc("/api/v1/folders/90/files", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []canvas.File{file(501, "Syllabus.pdf"), file(504, "Demo.mp4")})
	})
	mux.HandleFunc("/api/v1/courses/5/files/", func(w http.ResponseWriter, r *http.Request) {
		names := map[string]string{"501": "Syllabus.pdf", "502": "Reading.pdf", "503": "Worksheet.docx"}
		id := filepath.Base(r.URL.Path)
		name, ok := names[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var n int64
		fmt.Sscan(id, &n)
		reply(w, file(n, name))
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&downloads, 1)
		fmt.Fprintf(w, "bytes of %s", r.URL.Path)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &downloads
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func TestEndToEndBatchRun(t *testing.T) {
	server, downloads := newCanvasServer(t)
	root := t.TempDir()
	skipPath := filepath.Join(t.TempDir(), checkpoint.DefaultFileName)

	cfg := config.DefaultConfig()
	cfg.Canvas.APIURL = server.URL
	cfg.Canvas.APIKey = "token"
	cfg.Retry.Enabled = false
	log := logger.NewTestLogger()

	client, err := canvas.NewClient(cfg, log)
	require.NoError(t, err)

	run := func() *Summary {
		driver := NewDriver(client, Options{
			Root:     root,
			SkipList: checkpoint.NewSkipList(skipPath),
			Logger:   log,
		})
		summary, err := driver.Run(context.Background())
		require.NoError(t, err)
		return summary
	}

	summary := run()
	assert.Equal(t, []string{
		"Chemistry 101/Assignments/HW 1/Worksheet.docx",
		"Chemistry 101/Modules/Unit 1/Reading.pdf",
		"Chemistry 101/Modules/Unit 1/Syllabus.pdf",
	}, listFiles(t, root))
	assert.Equal(t, int32(3), atomic.LoadInt32(downloads))
	assert.Equal(t, 1, summary.CoursesProcessed)
	assert.Equal(t, 1, summary.CoursesUnavailable)
	assert.Equal(t, 1, summary.Files.Duplicates, "folder copy of the syllabus")
	assert.Equal(t, 1, summary.Files.Ineligible, "video in the files area")

	ids, err := checkpoint.NewSkipList(skipPath).Load()
	require.NoError(t, err)
	assert.Contains(t, ids, int64(5))
	assert.NotContains(t, ids, int64(8))

	second := run()
	assert.Equal(t, int32(3), atomic.LoadInt32(downloads), "recorded course is not walked again")
	assert.Equal(t, 1, second.CoursesSkipped)
}
