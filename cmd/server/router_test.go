package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, svc *stubTaskService) http.Handler {
	t.Helper()
	l, _ := logger.GetTestLogger(t)
	app := &application{
		config:      testConfig(),
		logger:      l,
		taskService: svc,
	}
	return app.setupRouter()
}

func serve(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, shared.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env shared.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &stubTaskService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_TaskRoutes(t *testing.T) {
	router := newTestRouter(t, &stubTaskService{})

	tests := []struct {
		method string
		target string
		body   string
		status int
		msg    string
	}{
		{http.MethodPost, "/api/tasks", `{"title":"Clean room"}`, http.StatusCreated, "Task created successfully"},
		{http.MethodGet, "/api/tasks", "", http.StatusOK, "Tasks retrieved successfully"},
		{http.MethodGet, "/api/tasks/1", "", http.StatusOK, "Task retrieved successfully"},
		{http.MethodPatch, "/api/tasks/1", `{"priority":"LOW"}`, http.StatusOK, "Task updated successfully"},
		{http.MethodDelete, "/api/tasks/1", "", http.StatusOK, "Task deleted successfully"},
		{http.MethodGet, "/api/tasks/2", "", http.StatusNotFound, "Task not found with id: 2"},
		{http.MethodGet, "/api/nothing", "", http.StatusNotFound, "No handler found for GET /api/nothing"},
		{http.MethodPut, "/api/tasks", "", http.StatusMethodNotAllowed, "Request method 'PUT' is not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec, env := serve(t, router, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, env.Status)
			assert.Equal(t, tt.msg, env.Message)
			assert.Equal(t, strings.SplitN(tt.target, "?", 2)[0], env.Path)
			assert.NotEmpty(t, env.Timestamp)
		})
	}
}

func TestRouter_RequestIDIsFreshPerRequest(t *testing.T) {
	router := newTestRouter(t, &stubTaskService{})

	first, firstEnv := serve(t, router, http.MethodGet, "/api/tasks/1", "")
	second, secondEnv := serve(t, router, http.MethodGet, "/api/tasks/1", "")

	assert.NotEmpty(t, firstEnv.RequestID)
	assert.Equal(t, firstEnv.RequestID, first.Header().Get(shared.RequestIDHeader))
	assert.Equal(t, secondEnv.RequestID, second.Header().Get(shared.RequestIDHeader))
	assert.NotEqual(t, firstEnv.RequestID, secondEnv.RequestID)
}

func TestRouter_ListUsesConfiguredDefaultPageSize(t *testing.T) {
	svc := &stubTaskService{}
	router := newTestRouter(t, svc)

	rec, _ := serve(t, router, http.MethodGet, "/api/tasks?sort=title,desc", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.lastList.Page)
	assert.Equal(t, testConfig().Pagination.DefaultPageSize, svc.lastList.Size)
	assert.Equal(t, "title,desc", svc.lastList.Sort)
}

func TestRouter_RecoversFromPanics(t *testing.T) {
	router := newTestRouter(t, &stubTaskService{panicOn: 13})

	rec, env := serve(t, router, http.MethodGet, "/api/tasks/13", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Internal Server Error", *env.Error)
	assert.NotEmpty(t, env.RequestID)
}
