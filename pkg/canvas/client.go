package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"canvasdl/pkg/config"
	errs "canvasdl/pkg/errors"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/retry"
	"canvasdl/pkg/storage"
)

// userAgent identifies the client to the API
const userAgent = "canvasdl/1.0"

// Client talks to the Canvas LMS REST API on behalf of one user
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	baseURL        string
	token          string
	perPage        int
	retry          *retry.Config
	logger         logger.Logger
}

// NewClient creates a client from the canvas, download and retry settings
func NewClient(cfg *config.Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, errs.New(errs.KindInvalidInput, "new client", err)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Canvas.RequestTimeout,
		},
		downloadClient: &http.Client{
			Timeout: cfg.Download.Timeout,
		},
		baseURL: strings.TrimRight(cfg.Canvas.APIURL, "/"),
		token:   cfg.Canvas.APIKey,
		perPage: ClampPerPage(cfg.Canvas.PerPage),
		retry:   retry.FromSettings(&cfg.Retry, log),
		logger:  log,
	}, nil
}

// SetRetryConfig replaces the retry policy for API requests
func (c *Client) SetRetryConfig(cfg *retry.Config) {
	c.retry = cfg
}

// BaseURL returns the instance URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// newRequest builds an authenticated GET request
func (c *Client) newRequest(ctx context.Context, op, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.New(errs.KindInvalidInput, op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// do sends req and classifies transport failures and error statuses. The
// caller owns the body of a successful response.
func (c *Client) do(hc *http.Client, req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"op":  op,
		"url": redactURL(req.URL),
	})

	resp, err := hc.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"op":       op,
			"url":      redactURL(req.URL),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.KindNetwork, op, err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"op":       op,
		"url":      redactURL(req.URL),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, errs.FromStatus(op, resp.StatusCode)
	}
	return resp, nil
}

// getPage fetches one page of a JSON resource into target and returns the
// URL of the next page, if any.
func (c *Client) getPage(ctx context.Context, op, rawURL string, target interface{}) (string, error) {
	return retry.DoWithResult(ctx, c.retry, func() (string, error) {
		req, err := c.newRequest(ctx, op, rawURL)
		if err != nil {
			return "", err
		}
		resp, err := c.do(c.httpClient, req, op)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", errs.New(errs.KindNetwork, op, fmt.Errorf("failed to read response body: %w", err))
		}
		if err := json.Unmarshal(body, target); err != nil {
			bodyPreview := string(body)
			if len(bodyPreview) > 200 {
				bodyPreview = bodyPreview[:200] + "..."
			}
			c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
				"op":           op,
				"url":          redactURL(req.URL),
				"error":        err.Error(),
				"body_preview": bodyPreview,
			})
			return "", errs.New(errs.KindUnknown, op, fmt.Errorf("failed to parse JSON: %w", err))
		}
		return nextLink(resp.Header.Get("Link")), nil
	})
}

// getJSON fetches a single JSON object
func (c *Client) getJSON(ctx context.Context, op, path string, target interface{}) error {
	_, err := c.getPage(ctx, op, c.baseURL+path, target)
	return err
}

// listAll follows pagination links until every element has been read
func listAll[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	next := c.baseURL + path + "?per_page=" + strconv.Itoa(c.perPage)

	var all []T
	for pageNo := 1; next != ""; pageNo++ {
		var page []T
		link, err := c.getPage(ctx, op, next, &page)
		if err != nil {
			return all, err
		}
		all = append(all, page...)
		next = link

		c.logger.DebugWithFields("fetched page", map[string]interface{}{
			"op":    op,
			"page":  pageNo,
			"items": len(page),
		})
	}
	return all, nil
}

// CurrentUser returns the owner of the API token
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "get current user", CurrentUserPath(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListCourses returns every course of the current user
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	return listAll[Course](ctx, c, "list courses", CoursesPath())
}

// ListModules returns a course's modules in order
func (c *Client) ListModules(ctx context.Context, courseID int64) ([]Module, error) {
	return listAll[Module](ctx, c, "list modules", ModulesPath(courseID))
}

// ListModuleItems returns a module's items in order
func (c *Client) ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]ModuleItem, error) {
	return listAll[ModuleItem](ctx, c, "list module items", ModuleItemsPath(courseID, moduleID))
}

// GetFile looks up a course file by id
func (c *Client) GetFile(ctx context.Context, courseID, fileID int64) (*File, error) {
	var file File
	if err := c.getJSON(ctx, "get file", FilePath(courseID, fileID), &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetPage looks up a wiki page by its url slug
func (c *Client) GetPage(ctx context.Context, courseID int64, pageURL string) (*Page, error) {
	var page Page
	if err := c.getJSON(ctx, "get page", PagePath(courseID, pageURL), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListAssignments returns a course's assignments
func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	return listAll[Assignment](ctx, c, "list assignments", AssignmentsPath(courseID))
}

// GetAssignment fetches a single assignment, including its description
func (c *Client) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*Assignment, error) {
	var assignment Assignment
	if err := c.getJSON(ctx, "get assignment", AssignmentPath(courseID, assignmentID), &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListFolders returns every folder of a course
func (c *Client) ListFolders(ctx context.Context, courseID int64) ([]Folder, error) {
	return listAll[Folder](ctx, c, "list folders", FoldersPath(courseID))
}

// ListFolderFiles returns the files directly inside a folder
func (c *Client) ListFolderFiles(ctx context.Context, folderID int64) ([]File, error) {
	return listAll[File](ctx, c, "list folder files", FolderFilesPath(folderID))
}

// Download streams the file's content to dest. Nothing is left at dest
// when the transfer fails. Transfers are not retried.
func (c *Client) Download(ctx context.Context, file *File, dest string) (int64, error) {
	const op = "download file"
	if file.URL == "" {
		return 0, errs.New(errs.KindResourceMissing, op, errors.New("file has no download url"))
	}

	req, err := c.newRequest(ctx, op, file.URL)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.do(c.downloadClient, req, op)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := storage.SaveFile(resp.Body, dest)
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, fmt.Errorf("%s: %w", op, err)
	}

	c.logger.DebugWithFields("download completed", map[string]interface{}{
		"file_id": file.ID,
		"path":    dest,
		"bytes":   n,
	})
	return n, nil
}

// nextLink extracts the rel="next" target from a Link header
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.TrimSpace(sections[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range sections[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if ok && strings.TrimSpace(key) == "rel" && strings.Trim(strings.TrimSpace(value), `"`) == "next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}

// redactURL drops the query string, which may carry file verifiers
func redactURL(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}
