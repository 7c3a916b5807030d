package dto

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pageweave-api/pkg/errors"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccessEnvelope(t *testing.T) {
	c, w := newTestContext(t)
	c.Set("trace_id", "abc123")

	Success(c, map[string]string{"slug": "best-blender"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp Response[map[string]string]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, "best-blender", resp.Data["slug"])
	assert.Equal(t, "abc123", resp.TraceID)
}

func TestSuccessWithPageMeta(t *testing.T) {
	c, w := newTestContext(t)

	SuccessWithPage(c, []string{"a", "b"}, &PageMeta{Page: 2, PageSize: 20, Total: 41, TotalPages: 3})

	var resp Response[[]string]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestFromAppErrorMapsStatusAndCode(t *testing.T) {
	c, w := newTestContext(t)

	FromAppError(c, apperrors.New(apperrors.CodePageNotFound, "page not found"))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "page not found", resp.Message)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.CodePageNotFound), resp.Error.ErrorCode)
}

func TestFromAppErrorWrapsUnknownError(t *testing.T) {
	c, w := newTestContext(t)

	FromAppError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
