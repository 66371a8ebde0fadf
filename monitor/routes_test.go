package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oddbit-project/batchcore/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRegisterRoutesListsJobs(t *testing.T) {
	router := newTestRouter()
	registry := batch.NewRegistry()
	RegisterRoutes(router, registry, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/management/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]batch.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body)
}

func TestRegisterRoutesJobNotFound(t *testing.T) {
	router := newTestRouter()
	registry := batch.NewRegistry()
	RegisterRoutes(router, registry, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/management/jobs/batchcore:name=missing,id=x", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterRoutesDefaultsPrefix(t *testing.T) {
	router := newTestRouter()
	registry := batch.NewRegistry()
	RegisterRoutes(router, registry, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/management/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRoutesCustomPrefix(t *testing.T) {
	router := newTestRouter()
	registry := batch.NewRegistry()
	RegisterRoutes(router, registry, "/ops")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ops/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRoutesJobFound(t *testing.T) {
	release := make(chan struct{})
	reader := &blockingReader{release: release}

	job, err := batch.NewBuilder().
		Name("routes-found-test").
		BatchSize(1).
		Jmx(true).
		Reader(reader).
		Build()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := job.Run(context.Background())
		done <- err
	}()

	var name string
	for name == "" {
		for _, candidate := range batch.DefaultRegistry.List() {
			if mon, ok := batch.DefaultRegistry.Get(candidate); ok && mon.Read().JobName == "routes-found-test" {
				name = candidate
				break
			}
		}
		if name == "" {
			time.Sleep(5 * time.Millisecond)
		}
	}

	router := newTestRouter()
	RegisterRoutes(router, batch.DefaultRegistry, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/management/jobs/"+name, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var snap batch.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "routes-found-test", snap.JobName)

	close(release)
	require.NoError(t, <-done)
}
