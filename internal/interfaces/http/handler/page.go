// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"pageweave-api/internal/application/page"
	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
	"pageweave-api/internal/infrastructure/persistence/redis"
	"pageweave-api/internal/interfaces/http/dto"
	apperrors "pageweave-api/pkg/errors"
	"pageweave-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// pageCacheTTL 已发布页面读取缓存时长
const pageCacheTTL = 5 * time.Minute

// PageHandler 页面生成与读取处理器
type PageHandler struct {
	orchestrator *page.Orchestrator
	states       repository.StateRepository
	pages        repository.PageRepository
	cache        *redis.Cache
	genCfg       *config.GenerationConfig
	defaultSite  string
}

// NewPageHandler 创建页面处理器
func NewPageHandler(
	orchestrator *page.Orchestrator,
	states repository.StateRepository,
	pages repository.PageRepository,
	cache *redis.Cache,
	genCfg *config.GenerationConfig,
	retrievalCfg *config.RetrievalConfig,
) *PageHandler {
	return &PageHandler{
		orchestrator: orchestrator,
		states:       states,
		pages:        pages,
		cache:        cache,
		genCfg:       genCfg,
		defaultSite:  retrievalCfg.SiteID,
	}
}

// streamSink 把生成流水线的进度事件桥接到 SSE 连接。
// Send 可能被图片生成的多个 worker 并发调用；通道发送本身并发安全。
// 客户端断开后 done 关闭，Send 返回 false，流水线静默终止。
type streamSink struct {
	events chan entity.ProgressEvent
	done   <-chan struct{}
}

func (s *streamSink) Send(event entity.ProgressEvent) bool {
	select {
	case s.events <- event:
		return true
	case <-s.done:
		return false
	}
}

// Generate 生成页面并通过 SSE 流式返回进度
// @Summary 生成页面
// @Description 从自由文本查询生成完整页面，进度通过 SSE 事件流返回
// @Tags Pages
// @Accept json
// @Produce text/event-stream
// @Param request body dto.GeneratePageRequest true "生成请求"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/pages/generate [post]
func (h *PageHandler) Generate(c *gin.Context) {
	var req dto.GeneratePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	siteID := req.SiteID
	if siteID == "" {
		siteID = h.defaultSite
	}

	ctx := c.Request.Context()
	slug := entity.Slugify(req.Query)

	// 幂等检查：同一查询已完成过的生成直接重放终态事件，
	// 不重新走流水线。状态查询失败不阻塞生成。
	if state, err := h.states.Get(ctx, siteID, entity.PagePath(slug)); err == nil && state != nil {
		switch state.Status {
		case entity.GenerationComplete:
			h.replayComplete(c, state)
			return
		case entity.GenerationPending, entity.GenerationInProgress:
			dto.FromAppError(c, apperrors.New(apperrors.CodeGenerationInFlight,
				"generation already in progress for this query"))
			return
		}
	}

	writeSSEHeaders(c)

	sink := &streamSink{
		events: make(chan entity.ProgressEvent, 16),
		done:   ctx.Done(),
	}

	go func() {
		defer close(sink.events)
		if _, err := h.orchestrator.Run(ctx, &page.GenerateRequest{
			SiteID:    siteID,
			SessionID: req.SessionID,
			Query:     req.Query,
		}, sink); err != nil {
			// 错误事件已由编排器写入 sink，这里只记录日志
			logger.Warn(ctx, "page generation finished with error",
				"slug", slug, "error", err.Error())
		}
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sink.events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event.Payload)
			return true
		case <-ctx.Done():
			// 客户端断开，生成协程通过 sink 感知并终止
			return false
		}
	})
}

// replayComplete 对已完成的生成重放终态事件
func (h *PageHandler) replayComplete(c *gin.Context, state *entity.GenerationState) {
	writeSSEHeaders(c)
	pageURL := strings.TrimRight(h.genCfg.PublicBaseURL, "/") + state.Path
	event := entity.NewGenerationCompleteEvent(pageURL)
	c.SSEvent(string(event.Type), event.Payload)
	c.Writer.Flush()
}

// writeSSEHeaders 设置 SSE 响应头
func writeSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// siteOf 解析请求作用的站点，与生成端同一套默认值
func (h *PageHandler) siteOf(c *gin.Context) string {
	if site := c.Query("site_id"); site != "" {
		return site
	}
	return h.defaultSite
}

// GetPage 获取已发布页面
// @Summary 获取页面
// @Description 根据 slug 获取已发布页面的完整内容
// @Tags Pages
// @Produce json
// @Param slug path string true "页面 slug"
// @Param site_id query string false "站点 ID，缺省为默认站点"
// @Success 200 {object} dto.Response[dto.PageResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/pages/{slug} [get]
func (h *PageHandler) GetPage(c *gin.Context) {
	slug := c.Param("slug")

	key := fmt.Sprintf("page:%s:%s", h.siteOf(c), slug)
	data, err := h.cache.GetOrLoadSafe(c.Request.Context(), key, pageCacheTTL, func() (interface{}, error) {
		p, err := h.pages.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperrors.New(apperrors.CodePageNotFound, "page not found")
		}
		return dto.ToPageResponse(p), nil
	})
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	var resp dto.PageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		dto.InternalError(c, "failed to decode cached page")
		return
	}
	dto.Success(c, &resp)
}

// GetStatus 获取页面生成状态
// @Summary 获取生成状态
// @Description 根据 slug 查询页面生成状态记录
// @Tags Pages
// @Produce json
// @Param slug path string true "页面 slug"
// @Param site_id query string false "站点 ID，缺省为默认站点"
// @Success 200 {object} dto.Response[dto.PageStatusResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/pages/{slug}/status [get]
func (h *PageHandler) GetStatus(c *gin.Context) {
	slug := c.Param("slug")

	state, err := h.states.Get(c.Request.Context(), h.siteOf(c), entity.PagePath(slug))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if state == nil {
		dto.FromAppError(c, apperrors.New(apperrors.CodeStateNotFound, "no generation state for this page"))
		return
	}
	dto.Success(c, dto.ToPageStatusResponse(state))
}

// ListPages 列出已发布页面
// @Summary 列出页面
// @Description 按发布时间倒序分页列出已发布页面
// @Tags Pages
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.PageSummary]
// @Router /v1/pages [get]
func (h *PageHandler) ListPages(c *gin.Context) {
	var req dto.ListPagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		dto.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	offset := (req.Page - 1) * req.PageSize
	pages, total, err := h.pages.List(c.Request.Context(), req.PageSize, offset)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize > 0 {
		totalPages++
	}

	dto.SuccessWithPage(c, dto.ToPageSummaries(pages), &dto.PageMeta{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      int(total),
		TotalPages: totalPages,
	})
}
