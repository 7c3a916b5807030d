package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pageweave-api/internal/domain/entity"
)

func retrievalWith(types ...entity.ChunkContentType) *entity.RetrievalResult {
	r := entity.EmptyRetrievalResult()
	for i, ct := range types {
		r.Chunks = append(r.Chunks, entity.KnowledgeChunk{
			ID:          string(rune('a' + i)),
			ContentType: ct,
		})
	}
	r.Recompute()
	return r
}

func TestAdjustRecipeLayoutsWithoutRecipes(t *testing.T) {
	s := newTestSelector(t)
	ctx := context.Background()
	noRecipes := retrievalWith(entity.ChunkContentArticle)

	d := Decision{Template: s.catalog.MustGet(entity.LayoutSingleRecipe), Source: DecisionTrusted}
	assert.Equal(t, entity.LayoutEducational, s.Adjust(ctx, d, noRecipes).Template.ID)

	d = Decision{Template: s.catalog.MustGet(entity.LayoutRecipeCollection), Source: DecisionRule}
	assert.Equal(t, entity.LayoutLifestyle, s.Adjust(ctx, d, noRecipes).Template.ID)

	// 检索到菜谱时保持不变
	withRecipes := retrievalWith(entity.ChunkContentRecipe)
	d = Decision{Template: s.catalog.MustGet(entity.LayoutSingleRecipe), Source: DecisionTrusted}
	assert.Equal(t, entity.LayoutSingleRecipe, s.Adjust(ctx, d, withRecipes).Template.ID)
}

func TestAdjustProductDetail(t *testing.T) {
	s := newTestSelector(t)
	ctx := context.Background()
	detail := Decision{Template: s.catalog.MustGet(entity.LayoutProductDetail), Source: DecisionRule}

	// 多个产品片段时升级为比较
	multi := retrievalWith(entity.ChunkContentProduct, entity.ChunkContentProduct)
	assert.Equal(t, entity.LayoutProductComparison, s.Adjust(ctx, detail, multi).Template.ID)

	// 零产品片段时降级为目录浏览
	none := retrievalWith(entity.ChunkContentArticle)
	assert.Equal(t, entity.LayoutCategoryBrowse, s.Adjust(ctx, detail, none).Template.ID)

	// 恰好一个产品片段时保持单品详情
	one := retrievalWith(entity.ChunkContentProduct)
	assert.Equal(t, entity.LayoutProductDetail, s.Adjust(ctx, detail, one).Template.ID)
}

// 裸产品名命中的单品选择在多产品检索结果下也不被改写。
func TestAdjustPreservesBareProductOverride(t *testing.T) {
	s := newTestSelector(t)
	ctx := context.Background()

	override := Decision{
		Template:       s.catalog.MustGet(entity.LayoutProductDetail),
		Source:         DecisionOverride,
		MatchedProduct: "a3500",
	}
	multi := retrievalWith(entity.ChunkContentProduct, entity.ChunkContentProduct, entity.ChunkContentProduct)

	adjusted := s.Adjust(ctx, override, multi)
	assert.Equal(t, entity.LayoutProductDetail, adjusted.Template.ID)
	assert.Equal(t, DecisionOverride, adjusted.Source)
}

func TestAdjustCategoryBrowseSingleProduct(t *testing.T) {
	s := newTestSelector(t)
	ctx := context.Background()
	browse := Decision{Template: s.catalog.MustGet(entity.LayoutCategoryBrowse), Source: DecisionRule}

	one := retrievalWith(entity.ChunkContentProduct)
	assert.Equal(t, entity.LayoutProductDetail, s.Adjust(ctx, browse, one).Template.ID)

	multi := retrievalWith(entity.ChunkContentProduct, entity.ChunkContentProduct)
	assert.Equal(t, entity.LayoutCategoryBrowse, s.Adjust(ctx, browse, multi).Template.ID)
}

func TestAdjustNilRetrieval(t *testing.T) {
	s := newTestSelector(t)
	ctx := context.Background()

	d := Decision{Template: s.catalog.MustGet(entity.LayoutLifestyle), Source: DecisionRule}
	assert.Equal(t, entity.LayoutLifestyle, s.Adjust(ctx, d, nil).Template.ID)
}
