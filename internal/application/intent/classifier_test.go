package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/application/layout"
	"pageweave-api/internal/domain/entity"
	wfmodel "pageweave-api/internal/workflow/model"
)

func TestClassifyDegradesWithoutChain(t *testing.T) {
	var c *Classifier
	cls := c.Classify(context.Background(), "site-1", "a3500", nil)
	require.NotNil(t, cls)
	assert.Equal(t, entity.IntentGeneral, cls.IntentType)
	assert.Equal(t, 0.3, cls.Confidence)
	assert.Equal(t, string(entity.LayoutLifestyle), cls.LayoutID)
}

func TestNormalizeClampsAndValidates(t *testing.T) {
	ctx := context.Background()

	cls := normalize(ctx, &wfmodel.IntentClassifyOutput{
		Intent:     "COMPARISON",
		Confidence: 1.7,
		Layout:     " product-comparison ",
		Products:   []string{" a3500 ", "", "a2500"},
	})
	assert.Equal(t, entity.IntentComparison, cls.IntentType)
	assert.Equal(t, 1.0, cls.Confidence)
	assert.Equal(t, "product-comparison", cls.LayoutID)
	assert.Equal(t, []string{"a3500", "a2500"}, cls.Entities.Products)
	assert.Contains(t, cls.ContentTypes, "comparison")

	cls = normalize(ctx, &wfmodel.IntentClassifyOutput{
		Intent:     "shopping",
		Confidence: -0.2,
	})
	assert.Equal(t, entity.IntentGeneral, cls.IntentType)
	assert.Equal(t, 0.0, cls.Confidence)
}

func TestExtractorFindsProductsAndIngredients(t *testing.T) {
	e := NewExtractor(layout.NewProductCatalog())

	got := e.Extract(context.Background(), "Can the A3500 blend mango and frozen bananas?", nil)
	assert.Equal(t, []string{"a3500"}, got.Products)
	assert.ElementsMatch(t, []string{"mango", "banana"}, got.Ingredients)
}

func TestExtractorWordBoundary(t *testing.T) {
	e := NewExtractor(layout.NewProductCatalog())

	// "goat" 不应命中 "oat"
	got := e.Extract(context.Background(), "goat cheese dip", nil)
	assert.Empty(t, got.Ingredients)
}

func TestExtractorCarriesMergedContext(t *testing.T) {
	e := NewExtractor(layout.NewProductCatalog())
	merged := &entity.MergedContext{
		Products:    []string{"x5"},
		Ingredients: []string{"kale"},
		Goals:       []string{"meal prep"},
	}

	got := e.Extract(context.Background(), "what about the a2500?", merged)
	assert.ElementsMatch(t, []string{"a2500", "x5"}, got.Products)
	assert.Contains(t, got.Ingredients, "kale")
	assert.Contains(t, got.Goals, "meal prep")
}

func TestMergeEntities(t *testing.T) {
	classified := entity.IntentEntities{
		Products:    []string{"a3500"},
		Goals:       []string{"smoothies"},
		UserContext: "new to blending",
	}
	extracted := &entity.IntentEntities{
		Products:    []string{"A3500", "a2500"},
		Ingredients: []string{"mango"},
	}

	merged := MergeEntities(classified, extracted)
	assert.ElementsMatch(t, []string{"a3500", "a2500"}, merged.Products)
	assert.Equal(t, []string{"mango"}, merged.Ingredients)
	assert.Equal(t, []string{"smoothies"}, merged.Goals)
	assert.Equal(t, "new to blending", merged.UserContext)
}
