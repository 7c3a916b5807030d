package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/domain/entity"
)

// fakeStateRepo 按 site+path 寻址的内存状态仓储
type fakeStateRepo struct {
	states map[string]*entity.GenerationState
}

func stateRepoKey(siteID, path string) string { return siteID + "|" + path }

func (f *fakeStateRepo) Acquire(_ context.Context, siteID string, state *entity.GenerationState) (bool, error) {
	key := stateRepoKey(siteID, state.Path)
	if existing, ok := f.states[key]; ok &&
		existing.Status != entity.GenerationComplete && existing.Status != entity.GenerationFailed {
		return false, nil
	}
	f.states[key] = state
	return true, nil
}

func (f *fakeStateRepo) Get(_ context.Context, siteID, path string) (*entity.GenerationState, error) {
	return f.states[stateRepoKey(siteID, path)], nil
}

func (f *fakeStateRepo) Update(_ context.Context, siteID string, state *entity.GenerationState) error {
	f.states[stateRepoKey(siteID, state.Path)] = state
	return nil
}

func (f *fakeStateRepo) Release(_ context.Context, siteID, path string) error {
	delete(f.states, stateRepoKey(siteID, path))
	return nil
}

func statusRequest(t *testing.T, h *PageHandler, target, slug string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Params = gin.Params{{Key: "slug", Value: slug}}
	h.GetStatus(c)
	return w
}

// 状态读取与生成端同一套站点解析：site_id 查询参数优先，缺省回落默认站点。
func TestGetStatusHonorsSiteID(t *testing.T) {
	states := &fakeStateRepo{states: map[string]*entity.GenerationState{}}
	h := &PageHandler{states: states, defaultSite: "default-site"}

	state := entity.NewGenerationState("mango smoothie", "mango-smoothie", entity.PagePath("mango-smoothie"))
	state.Status = entity.GenerationComplete
	require.NoError(t, states.Update(context.Background(), "tenant-b", state))

	w := statusRequest(t, h, "/v1/pages/mango-smoothie/status?site_id=tenant-b", "mango-smoothie")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(entity.GenerationComplete), resp.Data.Status)

	// 不带 site_id 落在默认站点，查不到该记录
	w = statusRequest(t, h, "/v1/pages/mango-smoothie/status", "mango-smoothie")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
