package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"moviecatalog/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func serve(t *testing.T, h *Handler) (int, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealth_Healthy(t *testing.T) {
	code, body := serve(t, NewHandler(ok, nil))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.NotContains(t, body, "cache")
}

func TestHealth_DatabaseDown(t *testing.T) {
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }
	code, body := serve(t, NewHandler(down, ok))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "disconnected", body["database"])
	assert.Contains(t, body["error"], "connection refused")
	assert.Equal(t, "connected", body["cache"])
}

func TestHealth_CacheStateDoesNotFailCheck(t *testing.T) {
	var store *cache.Store
	code, body := serve(t, NewHandler(ok, store.Ping))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "disabled", body["cache"])

	broken := func(context.Context) error { return errors.New("i/o timeout") }
	code, body = serve(t, NewHandler(ok, broken))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "disconnected", body["cache"])
}
