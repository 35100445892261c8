package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-harvest/dto"
	"forum-harvest/models"
	"forum-harvest/services"
)

type blockingCollector struct {
	name    string
	started chan struct{}
	release chan struct{}
}

func (c *blockingCollector) Name() string { return c.name }

func (c *blockingCollector) Run(context.Context) (models.RunResult, error) {
	if c.started != nil {
		close(c.started)
	}
	if c.release != nil {
		<-c.release
	}
	now := time.Now()
	return models.RunResult{RunID: uuid.New(), Collector: c.name, StartedAt: now, FinishedAt: now, Written: 2}, nil
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	render := &blockingCollector{name: "render", started: make(chan struct{}), release: make(chan struct{})}
	poll := &blockingCollector{name: "poll"}
	svc := services.NewRunService(context.Background(), render, poll)
	r := New(svc, "")

	rec := serve(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(r, http.MethodPost, "/api/v1/runs/crawl")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(r, http.MethodPost, "/api/v1/runs/render")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"collector":"render","status":"started"}`, rec.Body.String())
	<-render.started

	rec = serve(r, http.MethodPost, "/api/v1/runs/poll")
	assert.Equal(t, http.StatusConflict, rec.Code)
	var errBody dto.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, services.ErrRunInProgress.Error(), errBody.Error)

	rec = serve(r, http.MethodGet, "/health")
	assert.JSONEq(t, `{"status":"ok","running":"render"}`, rec.Body.String())

	close(render.release)
	svc.Wait()

	rec = serve(r, http.MethodGet, "/api/v1/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs dto.RunsResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Equal(t, []string{"poll", "render"}, runs.Collectors)
	assert.Empty(t, runs.Running)
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, "render", runs.Runs[0].Collector)
	assert.Equal(t, 2, runs.Runs[0].Written)
}

func TestListRunsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(services.NewRunService(context.Background(), &blockingCollector{name: "poll"}), "")

	rec := serve(r, http.MethodGet, "/api/v1/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"collectors":["poll"],"runs":[]}`, rec.Body.String())
}

func TestStartRunRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := services.NewRunService(context.Background(), &blockingCollector{name: "poll"})
	r := New(svc, "s3cret")

	rec := serve(r, http.MethodPost, "/api/v1/runs/poll")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, http.MethodGet, "/api/v1/runs")
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay open")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/poll", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	svc.Wait()
}

func TestSwaggerServesOpsDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(services.NewRunService(context.Background(), &blockingCollector{name: "poll"}), "")

	rec := serve(r, http.MethodGet, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Forum Harvest Ops API", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/health")
	assert.Contains(t, doc.Paths["/api/v1/runs"], "get")
	assert.Contains(t, doc.Paths["/api/v1/runs/{collector}"], "post")
}
