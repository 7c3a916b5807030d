package milvus

import (
	"context"
	"fmt"

	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
)

// Repository 知识片段向量仓储实现
type Repository struct {
	client *Client
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

var _ repository.ChunkRepository = (*Repository)(nil)

// EnsureCollection 确保集合与 HNSW 索引存在
func (r *Repository) EnsureCollection(ctx context.Context, dim int) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.EnsureCollection",
		trace.WithAttributes(attribute.String("collection", CollectionPageChunks)))
	defer span.End()

	collName := r.client.CollectionName(CollectionPageChunks)

	has, err := r.client.milvus.HasCollection(ctx, collName)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		schema := PageChunksSchema(dim)
		schema.CollectionName = collName
		if err := r.client.milvus.CreateCollection(ctx, schema, milvusentity.DefaultShardNumber); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx, err := milvusentity.NewIndexHNSW(
			milvusentity.COSINE,
			r.client.config.HNSWM,
			r.client.config.HNSWEfConstruction,
		)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create index: %w", err)
		}
		if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := r.client.milvus.LoadCollection(ctx, collName, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// Search 按向量相似度检索片段
func (r *Repository) Search(ctx context.Context, siteID string, vector []float32, topK int, minScore float64) ([]entity.KnowledgeChunk, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(
			attribute.String("site_id", siteID),
			attribute.Int("top_k", topK),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionPageChunks)

	// 集合尚未创建时返回空结果，空结果不是错误。
	has, err := r.client.milvus.HasCollection(ctx, collName)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		return []entity.KnowledgeChunk{}, nil
	}

	filter := fmt.Sprintf(`site_id == "%s"`, siteID)

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "title", "text_content", "content_type"},
		[]milvusentity.Vector{milvusentity.FloatVector(vector)},
		"vector",
		milvusentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var chunks []entity.KnowledgeChunk
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			score := float64(result.Scores[i])
			if score < minScore {
				continue
			}
			chunk := entity.KnowledgeChunk{Score: score}

			if idCol, ok := result.Fields.GetColumn("id").(*milvusentity.ColumnVarChar); ok {
				chunk.ID = idCol.Data()[i]
			}
			if titleCol, ok := result.Fields.GetColumn("title").(*milvusentity.ColumnVarChar); ok {
				chunk.Title = titleCol.Data()[i]
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*milvusentity.ColumnVarChar); ok {
				chunk.Text = textCol.Data()[i]
			}
			if typeCol, ok := result.Fields.GetColumn("content_type").(*milvusentity.ColumnVarChar); ok {
				chunk.ContentType = entity.ChunkContentType(typeCol.Data()[i])
			}

			chunks = append(chunks, chunk)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(chunks)))
	return chunks, nil
}

// Insert 批量写入片段及其向量
func (r *Repository) Insert(ctx context.Context, docs []repository.ChunkDocument, vectors [][]float32) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	if len(docs) == 0 {
		return nil
	}
	if len(docs) != len(vectors) {
		return fmt.Errorf("docs and vectors length mismatch: %d != %d", len(docs), len(vectors))
	}
	ctx, span := tracer.Start(ctx, "milvus.Insert",
		trace.WithAttributes(attribute.Int("doc_count", len(docs))))
	defer span.End()

	collName := r.client.CollectionName(CollectionPageChunks)

	ids := make([]string, len(docs))
	siteIDs := make([]string, len(docs))
	contentTypes := make([]string, len(docs))
	titles := make([]string, len(docs))
	texts := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		siteIDs[i] = doc.SiteID
		contentTypes[i] = string(doc.ContentType)
		titles[i] = doc.Title
		texts[i] = doc.Text
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	_, err := r.client.milvus.Upsert(ctx, collName, "",
		milvusentity.NewColumnVarChar("id", ids),
		milvusentity.NewColumnFloatVector("vector", dim, vectors),
		milvusentity.NewColumnVarChar("site_id", siteIDs),
		milvusentity.NewColumnVarChar("content_type", contentTypes),
		milvusentity.NewColumnVarChar("title", titles),
		milvusentity.NewColumnVarChar("text_content", texts),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	if err := r.client.milvus.Flush(ctx, collName, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	return nil
}
