package repository

import (
	"context"

	"pageweave-api/internal/domain/entity"
)

// ChunkDocument 待写入向量库的知识片段
type ChunkDocument struct {
	ID          string
	SiteID      string
	Title       string
	Text        string
	ContentType entity.ChunkContentType
}

// ChunkRepository 知识片段向量仓储接口
type ChunkRepository interface {
	// Search 按向量相似度检索片段，score 低于 minScore 的结果被过滤
	Search(ctx context.Context, siteID string, vector []float32, topK int, minScore float64) ([]entity.KnowledgeChunk, error)

	// Insert 批量写入片段及其向量
	Insert(ctx context.Context, docs []ChunkDocument, vectors [][]float32) error

	// EnsureCollection 确保集合与索引存在
	EnsureCollection(ctx context.Context, dim int) error
}
