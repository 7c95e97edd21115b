package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"canvasdl/pkg/config"
	errs "canvasdl/pkg/errors"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Canvas.APIURL = server.URL + "/"
	cfg.Canvas.APIKey = testToken
	cfg.Canvas.PerPage = 2

	client, err := NewClient(cfg, logger.NewTestLogger())
	require.NoError(t, err)
	client.SetRetryConfig(&retry.Config{
		MaxAttempts: 3,
		Backoff:     &retry.ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     retry.DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	})
	return client, server
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.DefaultConfig(), logger.NewTestLogger())
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestRequestsCarryBearerToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/users/self", r.URL.Path)
		writeJSON(w, User{ID: 9, Name: "Ada"})
	}))

	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), user.ID)
	assert.Equal(t, "Ada", user.Name)
}

func TestListCoursesFollowsPagination(t *testing.T) {
	var server *httptest.Server
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/courses", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "":
			assert.Equal(t, "2", r.URL.Query().Get("per_page"))
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2&per_page=2>; rel="next", <%s/api/v1/courses?page=2&per_page=2>; rel="last"`, server.URL, server.URL))
			writeJSON(w, []Course{{ID: 1, Name: "Physics"}, {ID: 2, Name: "Chemistry"}})
		case "2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=1&per_page=2>; rel="first"`, server.URL))
			writeJSON(w, []Course{{ID: 3, AccessRestrictedByDate: true}})
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))
	_ = server

	courses, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, "Chemistry", courses[1].Name)
	assert.True(t, courses[2].AccessRestrictedByDate)
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   errs.Kind
	}{
		{http.StatusUnauthorized, errs.KindAccessDenied},
		{http.StatusForbidden, errs.KindAccessDenied},
		{http.StatusNotFound, errs.KindResourceMissing},
		{http.StatusBadRequest, errs.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls int32
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
			}))

			_, err := client.ListFolders(context.Background(), 5)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.Classify(err))
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client errors are not retried")
		})
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, File{ID: 77, DisplayName: "Notes.pdf", URL: "http://x/files/77/download"})
	}))

	file, err := client.GetFile(context.Background(), 1, 77)
	require.NoError(t, err)
	assert.Equal(t, "Notes.pdf", file.DisplayName)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestInvalidJSON(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))

	_, err := client.GetAssignment(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, errs.KindUnknown, errs.Classify(err))
}

func TestGetPageEscapesSlug(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/courses/4/pages/week 1 notes", r.URL.Path)
		writeJSON(w, Page{URL: "week 1 notes", Body: "<p>hi</p>"})
	}))

	page, err := client.GetPage(context.Background(), 4, "week 1 notes")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", page.Body)
}

func TestModuleItems(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/courses/1/modules/2/items", r.URL.Path)
		w.Write([]byte(`[
			{"id": 1, "type": "File", "content_id": 11, "title": "Slides"},
			{"id": 2, "type": "Page", "page_url": "intro", "title": "Intro"},
			{"id": 3, "type": "ExternalUrl", "title": "Link"}
		]`))
	}))

	items, err := client.ListModuleItems(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, FileItem{ContentID: 11}, items[0].Ref())
	assert.Equal(t, PageItem{PageURL: "intro"}, items[1].Ref())
	assert.Equal(t, OtherItem{Type: "ExternalUrl"}, items[2].Ref())
}

func TestDownload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/1/download", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("verifier"))
		w.Write([]byte("pdf bytes"))
	})
	mux.HandleFunc("/files/2/download", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	client, server := newTestClient(t, mux)
	dir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		dest := filepath.Join(dir, "Notes.pdf")
		n, err := client.Download(context.Background(), &File{ID: 1, URL: server.URL + "/files/1/download?verifier=abc"}, dest)
		require.NoError(t, err)
		assert.Equal(t, int64(9), n)
		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(data))
	})

	t.Run("missing", func(t *testing.T) {
		dest := filepath.Join(dir, "Gone.pdf")
		_, err := client.Download(context.Background(), &File{ID: 2, URL: server.URL + "/files/2/download"}, dest)
		assert.True(t, errors.Is(err, errs.ErrResourceMissing))
		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("no url", func(t *testing.T) {
		_, err := client.Download(context.Background(), &File{ID: 3}, filepath.Join(dir, "Locked.pdf"))
		assert.True(t, errors.Is(err, errs.ErrResourceMissing))
	})
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{`<https://x/api/v1/courses?page=2>; rel="next"`, "https://x/api/v1/courses?page=2"},
		{`<https://x/a?page=1>; rel="current", <https://x/a?page=2>; rel="next", <https://x/a?page=9>; rel="last"`, "https://x/a?page=2"},
		{`<https://x/a?page=9>; rel="last"`, ""},
		{`garbage; rel="next"`, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, nextLink(tt.header), tt.header)
	}
}
