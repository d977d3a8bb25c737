package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bugtrackr/bug-tracker/internal/api/dto"
	"github.com/bugtrackr/bug-tracker/internal/api/http/handlers"
	"github.com/bugtrackr/bug-tracker/internal/config"
	"github.com/bugtrackr/bug-tracker/internal/events"
	"github.com/bugtrackr/bug-tracker/internal/observability"
	"github.com/bugtrackr/bug-tracker/internal/persistence"
	"github.com/bugtrackr/bug-tracker/internal/repository"
	"github.com/bugtrackr/bug-tracker/internal/service"
)

var testAppConfig = config.AppConfig{
	Name:             "bug-tracker-test",
	Version:          "test",
	BodyLimitBytes:   10 * 1024 * 1024,
	CORSAllowOrigins: "*",
}

func newTestApp(t *testing.T, rateLimit fiber.Handler) (*fiber.App, *observability.Metrics) {
	t.Helper()
	logger := zap.NewNop()

	db, err := persistence.NewSQLite(filepath.Join(t.TempDir(), "bugs.db"), logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persistence.RunSQLiteMigrations(context.Background(), db.DB, logger))

	repo := repository.NewSQLiteBugRepository(db.DB)
	svc := service.NewBugService(service.BugDependencies{
		BugRepo:    repo,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     logger,
		Pagination: config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100},
	})

	metrics := observability.NewMetrics()
	app := NewApp(testAppConfig)
	RegisterMiddlewares(app, logger, metrics, testAppConfig)
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler(testAppConfig.Name, testAppConfig.Version, repo, nil),
		Bugs:      handlers.NewBugsHandler(svc),
		Metrics:   handlers.NewMetricsHandler(metrics),
		RateLimit: rateLimit,
	})
	return app, metrics
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func createBug(t *testing.T, app *fiber.App, body map[string]string) dto.BugResponse {
	t.Helper()
	status, data := doJSON(t, app, http.MethodPost, "/api/bugs", body)
	require.Equal(t, http.StatusCreated, status, string(data))
	var bug dto.BugResponse
	require.NoError(t, json.Unmarshal(data, &bug))
	return bug
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, nil)

	status, data := doJSON(t, app, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"OK","message":"Bug Tracker API is running"}`, string(data))

	status, data = doJSON(t, app, http.MethodGet, "/api/health/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"store":"ok"`)
	assert.NotContains(t, string(data), "redis")
}

func TestCreateBug_AppliesDefaults(t *testing.T) {
	app, _ := newTestApp(t, nil)

	bug := createBug(t, app, map[string]string{
		"title":       "Login broken",
		"description": "Button unresponsive",
		"reporter":    "Ann",
	})
	assert.NotEmpty(t, bug.ID)
	assert.Equal(t, "open", string(bug.Status))
	assert.Equal(t, "medium", string(bug.Priority))
	assert.False(t, bug.CreatedAt.IsZero())
}

func TestCreateBug_FormEncoded(t *testing.T) {
	app, _ := newTestApp(t, nil)

	form := url.Values{}
	form.Set("title", "Mobile layout broken")
	form.Set("description", "Overlaps on small screens")
	form.Set("priority", "low")
	form.Set("reporter", "Alice Johnson")

	req := httptest.NewRequest(http.MethodPost, "/api/bugs", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, data := do(t, app, req)
	require.Equal(t, http.StatusCreated, status, string(data))

	var bug dto.BugResponse
	require.NoError(t, json.Unmarshal(data, &bug))
	assert.Equal(t, "low", string(bug.Priority))
	assert.Equal(t, "Alice Johnson", bug.Reporter)
}

func TestCreateBug_ValidationErrors(t *testing.T) {
	app, _ := newTestApp(t, nil)

	status, data := doJSON(t, app, http.MethodPost, "/api/bugs", map[string]string{
		"title":       "",
		"description": "x",
		"status":      "closed",
		"reporter":    "Ann",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"errors":["Title is required","Status must be one of: open, in-progress, resolved"]}`, string(data))

	status, data = doJSON(t, app, http.MethodGet, "/api/bugs", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"total":0`)
}

func TestCreateBug_EmptyAndMalformedBodies(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/bugs", nil)
	status, data := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"errors":["Title is required","Description is required","Reporter name is required"]}`, string(data))

	req = httptest.NewRequest(http.MethodPost, "/api/bugs", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	status, data = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"errors":["Invalid request body"]}`, string(data))
}

func TestGetBug(t *testing.T) {
	app, _ := newTestApp(t, nil)
	created := createBug(t, app, map[string]string{
		"title": "Test Bug", "description": "This is a test bug description",
		"status": "open", "priority": "high", "reporter": "John Doe",
	})

	status, data := doJSON(t, app, http.MethodGet, "/api/bugs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var got dto.BugResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Test Bug", got.Title)
	assert.Equal(t, "This is a test bug description", got.Description)
	assert.Equal(t, "open", string(got.Status))
	assert.Equal(t, "high", string(got.Priority))
	assert.Equal(t, "John Doe", got.Reporter)
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", got.CreatedAt, created.CreatedAt)

	status, data = doJSON(t, app, http.MethodGet, "/api/bugs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"Bug not found"}`, string(data))
}

func TestListBugs_HugePageIsEmpty(t *testing.T) {
	app, _ := newTestApp(t, nil)
	for i := 1; i <= 3; i++ {
		createBug(t, app, map[string]string{
			"title": fmt.Sprintf("Bug %d", i), "description": "d", "reporter": "Ann",
		})
	}

	status, data := doJSON(t, app, http.MethodGet, "/api/bugs?page=1000000000000000000&limit=10", nil)
	require.Equal(t, http.StatusOK, status)
	var page dto.BugListResponse
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Empty(t, page.Bugs)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1000000000000000000, page.CurrentPage)
}

func TestListBugs_PaginationAndFilters(t *testing.T) {
	app, _ := newTestApp(t, nil)
	for i := 1; i <= 12; i++ {
		status := "open"
		if i%3 == 0 {
			status = "resolved"
		}
		createBug(t, app, map[string]string{
			"title": fmt.Sprintf("Bug %02d", i), "description": "d", "status": status, "reporter": "Ann",
		})
	}

	var page dto.BugListResponse

	status, data := doJSON(t, app, http.MethodGet, "/api/bugs", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Len(t, page.Bugs, 10)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)

	status, data = doJSON(t, app, http.MethodGet, "/api/bugs?page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Len(t, page.Bugs, 2)

	status, data = doJSON(t, app, http.MethodGet, "/api/bugs?page=9", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"bugs":[]`)

	status, data = doJSON(t, app, http.MethodGet, "/api/bugs?status=resolved", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, 4, page.Total)
	for _, b := range page.Bugs {
		assert.Equal(t, "resolved", string(b.Status))
	}
	assert.Equal(t, "Bug 12", page.Bugs[0].Title)

	status, data = doJSON(t, app, http.MethodGet, "/api/bugs?page=abc&limit=-1", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Bugs, 10)
}

func TestUpdateBug(t *testing.T) {
	app, _ := newTestApp(t, nil)
	created := createBug(t, app, map[string]string{
		"title": "Dashboard loading slowly", "description": "Takes 10s", "reporter": "Jane Smith",
	})

	status, data := doJSON(t, app, http.MethodPut, "/api/bugs/"+created.ID, map[string]string{"status": "resolved"})
	require.Equal(t, http.StatusOK, status, string(data))
	var updated dto.BugResponse
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "resolved", string(updated.Status))
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Reporter, updated.Reporter)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	status, data = doJSON(t, app, http.MethodPut, "/api/bugs/"+created.ID, map[string]string{"priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"errors":["Priority must be one of: low, medium, high"]}`, string(data))

	status, _ = doJSON(t, app, http.MethodPut, "/api/bugs/missing", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteBug_Twice(t *testing.T) {
	app, _ := newTestApp(t, nil)
	created := createBug(t, app, map[string]string{"title": "t", "description": "d", "reporter": "Ann"})

	status, data := doJSON(t, app, http.MethodDelete, "/api/bugs/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Bug deleted successfully"}`, string(data))

	status, data = doJSON(t, app, http.MethodDelete, "/api/bugs/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"Bug not found"}`, string(data))
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t, nil)
	status, data := doJSON(t, app, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(data), `"code":"NOT_FOUND"`)
}

func TestCORSHeaders(t *testing.T) {
	app, _ := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	app, metrics := newTestApp(t, nil)
	doJSON(t, app, http.MethodGet, "/api/bugs/missing", nil)

	status, data := doJSON(t, app, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	var snap observability.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Contains(t, snap.Errors, observability.Counter{Key: "/api/bugs/missing|GET|NOT_FOUND", Count: 1})
	var notFound int64
	for _, c := range snap.Requests {
		if strings.HasSuffix(c.Key, "|GET|404") {
			notFound += c.Count
		}
	}
	assert.Equal(t, int64(1), notFound)
	assert.GreaterOrEqual(t, metrics.Snapshot().TotalRequests, int64(2))
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := RateLimitMiddleware(NewMemoryWindowCounter(), config.RateLimitConfig{Requests: 2, WindowSeconds: 60}, zap.NewNop())
	app, _ := newTestApp(t, limiter)

	for i := 0; i < 2; i++ {
		status, _ := doJSON(t, app, http.MethodGet, "/api/bugs", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, data := doJSON(t, app, http.MethodGet, "/api/bugs", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.JSONEq(t, `{"code":"RATE_LIMITED","message":"rate limit exceeded"}`, string(data))

	// health is outside the limited group
	status, _ = doJSON(t, app, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
}
