// Package handler 提供 HTTP 请求处理器
package handler

import (
	"pageweave-api/internal/application/retrieval"
	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/interfaces/http/dto"
	apperrors "pageweave-api/pkg/errors"

	"github.com/gin-gonic/gin"
)

// RetrievalHandler 检索调试与内容索引处理器
type RetrievalHandler struct {
	engine      *retrieval.Engine
	indexer     *retrieval.Indexer
	defaultSite string
}

// NewRetrievalHandler 创建检索处理器
func NewRetrievalHandler(engine *retrieval.Engine, indexer *retrieval.Indexer, retrievalCfg *config.RetrievalConfig) *RetrievalHandler {
	return &RetrievalHandler{
		engine:      engine,
		indexer:     indexer,
		defaultSite: retrievalCfg.SiteID,
	}
}

// Search 检索调试接口
// 走与生成流水线相同的检索路径，但保留错误与降级原因，
// 用于排查"页面为什么没有引用某条内容"。
// @Summary 检索调试
// @Description 按查询文本执行向量检索并返回命中片段
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param request body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/retrieval/search [post]
func (h *RetrievalHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	siteID := req.SiteID
	if siteID == "" {
		siteID = h.defaultSite
	}

	resp := &dto.SearchResponse{Chunks: []entity.KnowledgeChunk{}}

	if h.engine == nil || !h.engine.Enabled() {
		resp.DisabledReason = "retrieval disabled: embedder or vector store not configured"
		dto.Success(c, resp)
		return
	}

	chunks, err := h.engine.Search(c.Request.Context(), siteID, req.Query, req.TopK, req.MinScore)
	if err != nil {
		// 调试接口不降级，直接暴露失败原因
		resp.DisabledReason = err.Error()
		dto.Success(c, resp)
		return
	}

	result := &entity.RetrievalResult{Chunks: chunks}
	result.Recompute()

	resp.Chunks = result.Chunks
	resp.HasProductInfo = result.HasProductInfo
	resp.HasRecipes = result.HasRecipes
	dto.Success(c, resp)
}

// Index 内容索引接口
// @Summary 索引内容
// @Description 将产品、配方等参考文档切片并写入向量库
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param request body dto.IndexRequest true "索引请求"
// @Success 201 {object} dto.Response[dto.IndexResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/retrieval/index [post]
func (h *RetrievalHandler) Index(c *gin.Context) {
	var req dto.IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if h.indexer == nil || !h.indexer.Enabled() {
		dto.FromAppError(c, apperrors.New(apperrors.CodeServiceUnavailable,
			"indexing unavailable: embedder or vector store not configured"))
		return
	}

	siteID := req.SiteID
	if siteID == "" {
		siteID = h.defaultSite
	}

	docs := make([]retrieval.IndexDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, retrieval.IndexDocument{
			Title:       d.Title,
			Text:        d.Text,
			ContentType: entity.ChunkContentType(d.ContentType),
		})
	}

	indexed, err := h.indexer.Index(c.Request.Context(), siteID, docs)
	if err != nil {
		dto.FromAppError(c, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to index documents"))
		return
	}

	dto.Created(c, &dto.IndexResponse{Indexed: indexed})
}
