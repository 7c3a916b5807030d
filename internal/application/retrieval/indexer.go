package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
)

const (
	defaultChunkSizeRunes    = 800
	defaultChunkOverlapRunes = 80
	defaultEmbeddingBatch    = 32
)

// IndexDocument 一篇待入库的参考文档
type IndexDocument struct {
	Title       string                  `json:"title"`
	Text        string                  `json:"text"`
	ContentType entity.ChunkContentType `json:"content_type"`
}

// Indexer 参考文档入库器
// 将文档切片、嵌入并写入向量集合，供检索引擎召回。
type Indexer struct {
	embedder embedding.Embedder
	chunks   repository.ChunkRepository

	embeddingBatchSize int
	chunkSizeRunes     int
	chunkOverlapRunes  int
}

// NewIndexer 创建入库器
func NewIndexer(embedder embedding.Embedder, chunks repository.ChunkRepository) *Indexer {
	return &Indexer{
		embedder:           embedder,
		chunks:             chunks,
		embeddingBatchSize: defaultEmbeddingBatch,
		chunkSizeRunes:     defaultChunkSizeRunes,
		chunkOverlapRunes:  defaultChunkOverlapRunes,
	}
}

// Enabled 入库器是否可用
func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.chunks != nil
}

// Index 批量入库文档，返回写入的片段数
func (i *Indexer) Index(ctx context.Context, siteID string, docs []IndexDocument) (int, error) {
	if !i.Enabled() {
		return 0, fmt.Errorf("retrieval indexing is disabled")
	}
	if strings.TrimSpace(siteID) == "" {
		return 0, fmt.Errorf("site_id is required")
	}
	if err := i.chunks.EnsureCollection(ctx, 0); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}

	var pending []repository.ChunkDocument
	for _, doc := range docs {
		text := strings.TrimSpace(doc.Text)
		if text == "" {
			continue
		}
		ct := doc.ContentType
		if ct == "" {
			ct = entity.ChunkContentArticle
		}
		for _, piece := range splitByRunes(text, i.chunkSizeRunes, i.chunkOverlapRunes) {
			pending = append(pending, repository.ChunkDocument{
				ID:          uuid.NewString(),
				SiteID:      siteID,
				Title:       strings.TrimSpace(doc.Title),
				Text:        piece,
				ContentType: ct,
			})
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	for start := 0; start < len(pending); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, 0, len(batch))
		for _, d := range batch {
			texts = append(texts, d.Text)
		}
		vecs64, err := i.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			return start, fmt.Errorf("embed batch: %w", err)
		}
		if len(vecs64) != len(batch) {
			return start, fmt.Errorf("embedding count %d does not match batch size %d", len(vecs64), len(batch))
		}

		vectors := make([][]float32, 0, len(vecs64))
		for _, v := range vecs64 {
			vec := make([]float32, 0, len(v))
			for _, x := range v {
				vec = append(vec, float32(x))
			}
			vectors = append(vectors, vec)
		}

		if err := i.chunks.Insert(ctx, batch, vectors); err != nil {
			return start, fmt.Errorf("insert chunks: %w", err)
		}
	}
	return len(pending), nil
}
