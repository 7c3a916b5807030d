package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, 0, len(texts))
	for range texts {
		out = append(out, []float64{0.1, 0.2, 0.3})
	}
	return out, nil
}

type stubChunkRepo struct {
	chunks    []entity.KnowledgeChunk
	searchErr error
	inserted  []repository.ChunkDocument
}

func (s *stubChunkRepo) Search(context.Context, string, []float32, int, float64) ([]entity.KnowledgeChunk, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.chunks, nil
}

func (s *stubChunkRepo) Insert(_ context.Context, docs []repository.ChunkDocument, _ [][]float32) error {
	s.inserted = append(s.inserted, docs...)
	return nil
}

func (s *stubChunkRepo) EnsureCollection(context.Context, int) error { return nil }

func TestRetrieveSuccess(t *testing.T) {
	repo := &stubChunkRepo{chunks: []entity.KnowledgeChunk{
		{ID: "1", ContentType: entity.ChunkContentProduct, Score: 0.9},
		{ID: "2", ContentType: entity.ChunkContentRecipe, Score: 0.8},
	}}
	e := NewEngine(&stubEmbedder{}, repo, &config.RetrievalConfig{TopK: 5, MinScore: 0.5})

	res := e.Retrieve(context.Background(), "site-1", "best blender")
	require.Len(t, res.Chunks, 2)
	assert.True(t, res.HasProductInfo)
	assert.True(t, res.HasRecipes)
	assert.Empty(t, res.DisabledReason)
}

// 检索失败降级为空结果而不是报错。
func TestRetrieveDegradesOnFailure(t *testing.T) {
	e := NewEngine(&stubEmbedder{}, &stubChunkRepo{searchErr: fmt.Errorf("milvus down")}, nil)

	res := e.Retrieve(context.Background(), "site-1", "best blender")
	assert.True(t, res.Empty())
	assert.Contains(t, res.DisabledReason, "milvus down")

	e = NewEngine(&stubEmbedder{err: fmt.Errorf("embed boom")}, &stubChunkRepo{}, nil)
	res = e.Retrieve(context.Background(), "site-1", "best blender")
	assert.True(t, res.Empty())
	assert.Contains(t, res.DisabledReason, "embed boom")
}

func TestRetrieveDisabled(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	res := e.Retrieve(context.Background(), "site-1", "anything")
	assert.True(t, res.Empty())
	assert.NotEmpty(t, res.DisabledReason)
}

func TestIndexerSplitsAndInserts(t *testing.T) {
	repo := &stubChunkRepo{}
	idx := NewIndexer(&stubEmbedder{}, repo)

	long := strings.Repeat("blend well. ", 200)
	n, err := idx.Index(context.Background(), "site-1", []IndexDocument{
		{Title: "Guide", Text: long, ContentType: entity.ChunkContentArticle},
		{Title: "Empty", Text: "   "},
	})
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Len(t, repo.inserted, n)
	for _, d := range repo.inserted {
		assert.Equal(t, "site-1", d.SiteID)
		assert.Equal(t, entity.ChunkContentArticle, d.ContentType)
		assert.NotEmpty(t, d.ID)
	}
}

func TestSplitByRunesOverlap(t *testing.T) {
	// 步长 30：[0:40] [30:70] [60:100]。末块已覆盖到文本结尾，
	// 不再追加一个完全被前块包含的残片。
	pieces := splitByRunes(strings.Repeat("a", 100), 40, 10)
	require.Len(t, pieces, 3)
	for _, p := range pieces {
		assert.Len(t, p, 40)
	}

	pieces = splitByRunes(strings.Repeat("b", 70), 40, 10)
	require.Len(t, pieces, 2)
	assert.Len(t, pieces[1], 40)

	pieces = splitByRunes("short", 40, 10)
	require.Len(t, pieces, 1)
	assert.Equal(t, "short", pieces[0])
}
