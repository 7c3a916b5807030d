package dto

import (
	"pageweave-api/internal/domain/entity"
)

// SearchRequest 检索调试请求
type SearchRequest struct {
	// Query 检索查询文本
	Query string `json:"query" binding:"required"`
	// SiteID 站点标识，缺省时使用服务端配置的默认站点
	SiteID string `json:"site_id"`
	// TopK 返回结果数量，0 表示使用服务端默认值
	TopK int `json:"top_k" binding:"omitempty,min=1,max=30"`
	// MinScore 最低相似度阈值，0 表示使用服务端默认值
	MinScore float64 `json:"min_score" binding:"omitempty,min=0,max=1"`
}

// SearchResponse 检索调试响应
type SearchResponse struct {
	Chunks         []entity.KnowledgeChunk `json:"chunks"`
	HasProductInfo bool                    `json:"has_product_info"`
	HasRecipes     bool                    `json:"has_recipes"`
	// DisabledReason 检索引擎降级时的原因说明
	DisabledReason string `json:"disabled_reason,omitempty"`
}

// IndexDocumentRequest 单篇待索引文档
type IndexDocumentRequest struct {
	Title string `json:"title" binding:"required"`
	Text  string `json:"text" binding:"required"`
	// ContentType 文档内容类型：product / recipe / article / faq
	ContentType string `json:"content_type" binding:"omitempty,oneof=product recipe article faq"`
}

// IndexRequest 知识库索引请求
type IndexRequest struct {
	SiteID    string                 `json:"site_id"`
	Documents []IndexDocumentRequest `json:"documents" binding:"required,min=1,dive"`
}

// IndexResponse 知识库索引响应
type IndexResponse struct {
	// Indexed 本次写入的片段数量
	Indexed int `json:"indexed"`
}
