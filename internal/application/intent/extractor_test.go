package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/application/layout"
	"pageweave-api/internal/domain/entity"
)

func TestExtractProductsAndIngredients(t *testing.T) {
	e := NewExtractor(layout.NewProductCatalog())

	out := e.Extract(context.Background(), "mango banana smoothie on the a3500", nil)
	require.NotNil(t, out)
	assert.Equal(t, []string{"a3500"}, out.Products)
	assert.ElementsMatch(t, []string{"mango", "banana"}, out.Ingredients)
	assert.Empty(t, out.Goals)
}

func TestExtractWordBoundary(t *testing.T) {
	e := NewExtractor(layout.NewProductCatalog())

	// "goat" 不应命中 "oat"
	out := e.Extract(context.Background(), "goat cheese dip", nil)
	assert.Empty(t, out.Ingredients)

	out = e.Extract(context.Background(), "overnight oats recipe", nil)
	assert.Equal(t, []string{"oat"}, out.Ingredients)
}

func TestExtractMergesSessionContext(t *testing.T) {
	e := NewExtractor(layout.NewProductCatalog())
	merged := &entity.MergedContext{
		Products:    []string{"e310"},
		Ingredients: []string{"kale"},
		Goals:       []string{"meal prep"},
	}

	out := e.Extract(context.Background(), "show me the a3500", merged)
	assert.ElementsMatch(t, []string{"a3500", "e310"}, out.Products)
	assert.Equal(t, []string{"kale"}, out.Ingredients)
	assert.Equal(t, []string{"meal prep"}, out.Goals)
}

func TestMergeEntitiesUnion(t *testing.T) {
	classified := entity.IntentEntities{
		Products:    []string{"A3500"},
		Ingredients: []string{"mango"},
		UserContext: "beginner cook",
	}
	extracted := &entity.IntentEntities{
		Products:    []string{"a3500", "e310"},
		Ingredients: []string{"banana"},
		Goals:       []string{"smoothies"},
	}

	out := MergeEntities(classified, extracted)
	// 大小写不敏感去重，保留先到者
	assert.Equal(t, []string{"A3500", "e310"}, out.Products)
	assert.ElementsMatch(t, []string{"mango", "banana"}, out.Ingredients)
	assert.Equal(t, []string{"smoothies"}, out.Goals)
	assert.Equal(t, "beginner cook", out.UserContext)

	out = MergeEntities(classified, nil)
	assert.Equal(t, classified, out)
}
