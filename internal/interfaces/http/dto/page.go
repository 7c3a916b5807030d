package dto

import (
	"time"

	"pageweave-api/internal/domain/entity"
)

// GeneratePageRequest 页面生成请求
type GeneratePageRequest struct {
	// Query 用户自由文本查询，整条流水线的唯一必填输入
	Query string `json:"query" binding:"required"`
	// SessionID 会话标识，缺省时本次生成视为全新会话
	SessionID string `json:"session_id"`
	// SiteID 站点标识，缺省时使用服务端配置的默认站点
	SiteID string `json:"site_id"`
}

// PageResponse 已发布页面响应
type PageResponse struct {
	Slug        string    `json:"slug"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Query       string    `json:"query"`
	LayoutID    string    `json:"layout_id"`
	HTML        string    `json:"html"`
	BlockCount  int       `json:"block_count"`
	ImageCount  int       `json:"image_count"`
	Status      string    `json:"status"`
	PublishedAt time.Time `json:"published_at"`
}

// PageSummary 页面列表项（不含 HTML 正文）
type PageSummary struct {
	Slug        string    `json:"slug"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	LayoutID    string    `json:"layout_id"`
	BlockCount  int       `json:"block_count"`
	ImageCount  int       `json:"image_count"`
	PublishedAt time.Time `json:"published_at"`
}

// ListPagesRequest 页面列表查询参数
type ListPagesRequest struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// PageStatusResponse 页面生成状态响应
type PageStatusResponse struct {
	Slug      string    `json:"slug"`
	Path      string    `json:"path"`
	Status    string    `json:"status"`
	Query     string    `json:"query,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPageResponse 将页面实体转换为响应
func ToPageResponse(page *entity.Page) *PageResponse {
	return &PageResponse{
		Slug:        page.Slug,
		Path:        page.Path,
		Title:       page.Title,
		Query:       page.Query,
		LayoutID:    page.LayoutID,
		HTML:        page.HTML,
		BlockCount:  page.BlockCount,
		ImageCount:  page.ImageCount,
		Status:      string(page.Status),
		PublishedAt: page.PublishedAt,
	}
}

// ToPageSummaries 将页面实体列表转换为列表项
func ToPageSummaries(pages []*entity.Page) []PageSummary {
	summaries := make([]PageSummary, 0, len(pages))
	for _, page := range pages {
		summaries = append(summaries, PageSummary{
			Slug:        page.Slug,
			Path:        page.Path,
			Title:       page.Title,
			LayoutID:    page.LayoutID,
			BlockCount:  page.BlockCount,
			ImageCount:  page.ImageCount,
			PublishedAt: page.PublishedAt,
		})
	}
	return summaries
}

// ToPageStatusResponse 将生成状态实体转换为响应
func ToPageStatusResponse(state *entity.GenerationState) *PageStatusResponse {
	return &PageStatusResponse{
		Slug:      state.Slug,
		Path:      state.Path,
		Status:    string(state.Status),
		Query:     state.Query,
		Error:     state.Error,
		CreatedAt: state.CreatedAt,
	}
}
