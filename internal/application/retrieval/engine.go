// Package retrieval 实现上下文检索与参考文档入库
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
	"pageweave-api/pkg/logger"
	"pageweave-api/pkg/metrics"
)

const (
	defaultTopK     = 8
	maxTopK         = 30
	defaultMinScore = 0.3
)

// Engine 上下文检索引擎
// 检索失败一律降级为空结果而不是让管线失败：缺上下文的页面仍可生成，
// DisabledReason 记录降级原因供调试接口暴露。
type Engine struct {
	embedder embedding.Embedder
	chunks   repository.ChunkRepository

	topK     int
	minScore float64
	ready    bool
}

// NewEngine 创建检索引擎
// embedder 或 chunks 为 nil 时引擎处于关闭状态，Retrieve 始终返回空结果。
func NewEngine(embedder embedding.Embedder, chunks repository.ChunkRepository, cfg *config.RetrievalConfig) *Engine {
	e := &Engine{
		embedder: embedder,
		chunks:   chunks,
		topK:     defaultTopK,
		minScore: defaultMinScore,
	}
	if cfg != nil {
		if cfg.TopK > 0 {
			e.topK = cfg.TopK
		}
		if cfg.MinScore > 0 {
			e.minScore = cfg.MinScore
		}
	}
	if e.topK > maxTopK {
		e.topK = maxTopK
	}
	return e
}

// Enabled 引擎是否具备检索能力
func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.chunks != nil
}

// Result 一次检索的结果与可能的降级原因
type Result struct {
	*entity.RetrievalResult
	DisabledReason string
}

// Retrieve 按查询检索参考上下文
// 永不返回错误：嵌入或向量检索失败时降级为空结果并记录原因。
func (e *Engine) Retrieve(ctx context.Context, siteID, query string) *Result {
	out := &Result{RetrievalResult: entity.EmptyRetrievalResult()}

	if !e.Enabled() {
		out.DisabledReason = "retrieval disabled: embedder or vector store not configured"
		metrics.RetrievalTotal.WithLabelValues("disabled").Inc()
		return out
	}

	query = strings.TrimSpace(query)
	if query == "" {
		out.DisabledReason = "empty query"
		metrics.RetrievalTotal.WithLabelValues("skipped").Inc()
		return out
	}

	chunks, err := e.search(ctx, siteID, query, e.topK, e.minScore)
	if err != nil {
		logger.Warn(ctx, "retrieval degraded to empty context",
			"site_id", siteID,
			"error", err.Error(),
		)
		out.DisabledReason = err.Error()
		metrics.RetrievalTotal.WithLabelValues("degraded").Inc()
		return out
	}

	out.Chunks = chunks
	out.Recompute()
	metrics.RetrievalTotal.WithLabelValues("success").Inc()
	metrics.RetrievalChunks.WithLabelValues("success").Observe(float64(len(chunks)))
	return out
}

// Search 调试接口用的直通检索，保留错误
func (e *Engine) Search(ctx context.Context, siteID, query string, topK int, minScore float64) ([]entity.KnowledgeChunk, error) {
	if !e.Enabled() {
		return nil, fmt.Errorf("retrieval is disabled")
	}
	if topK <= 0 {
		topK = e.topK
	}
	if topK > maxTopK {
		topK = maxTopK
	}
	if minScore <= 0 {
		minScore = e.minScore
	}
	return e.search(ctx, siteID, query, topK, minScore)
}

func (e *Engine) search(ctx context.Context, siteID, query string, topK int, minScore float64) ([]entity.KnowledgeChunk, error) {
	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}
	vec, err := e.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	chunks, err := e.chunks.Search(ctx, siteID, vec, topK, minScore)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return chunks, nil
}

func (e *Engine) ensureReady(ctx context.Context) error {
	if e.ready {
		return nil
	}
	if err := e.chunks.EnsureCollection(ctx, 0); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	e.ready = true
	return nil
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := e.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	out := make([]float32, 0, len(vecs[0]))
	for _, x := range vecs[0] {
		out = append(out, float32(x))
	}
	return out, nil
}
