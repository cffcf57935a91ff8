package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"moviecatalog/internal/pkg/pagination"
	"moviecatalog/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Success(c, http.StatusCreated, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["data"].(map[string]any)["id"])
}

func TestKnown_Validation(t *testing.T) {
	var handled bool
	w, body := run(t, func(c *gin.Context) {
		handled = Known(c, fmt.Errorf("wrap: %w", validator.Errors{"score": "Score must be between 0 and 5."}))
	})
	assert.True(t, handled)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", e["code"])
	assert.Equal(t, "Score must be between 0 and 5.", e["details"].(map[string]any)["score"])
}

func TestKnown_InvalidPage(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Known(c, pagination.ErrInvalidPage) })
	assert.Equal(t, http.StatusNotFound, w.Code)
	e := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_PAGE", e["code"])
	assert.Equal(t, "Invalid page.", e["message"])
}

func TestKnown_Other(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, Known(c, errors.New("boom")))
}
