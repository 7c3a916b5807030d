package imaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/domain/entity"
)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestBuildRequestsHero(t *testing.T) {
	b := NewBuilder()
	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{
		{ID: "b1", Type: entity.BlockHero, Content: mustJSON(t, entity.HeroContent{
			Title:       "The A3500",
			ImagePrompt: "studio shot of a blender",
		})},
	}}

	reqs := b.BuildRequests(context.Background(), content, nil)
	require.Len(t, reqs, 1)
	assert.Equal(t, "b1-hero", reqs[0].ID)
	assert.Equal(t, "b1", reqs[0].BlockID)
	assert.Equal(t, "studio shot of a blender", reqs[0].Prompt)
	assert.Equal(t, "16:9", reqs[0].AspectRatio)
}

func TestBuildRequestsPerSubElement(t *testing.T) {
	b := NewBuilder()
	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{
		{ID: "b2", Type: entity.BlockRecipeCards, Content: mustJSON(t, entity.RecipeCardsContent{
			Recipes: []entity.RecipeCard{
				{Name: "Green Smoothie", ImagePrompt: "green smoothie in a glass"},
				{Name: "No Image"},
				{Name: "Mango Lassi", ImagePrompt: "mango lassi"},
			},
		})},
	}}

	reqs := b.BuildRequests(context.Background(), content, nil)
	require.Len(t, reqs, 2)
	assert.Equal(t, "b2-recipe-0", reqs[0].ID)
	assert.Equal(t, "b2-recipe-2", reqs[1].ID)
}

// 纯文本类块对任何载荷都产出零条请求。
func TestBuildRequestsTextOnlyBlocks(t *testing.T) {
	b := NewBuilder()
	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{
		{ID: "f1", Type: entity.BlockFAQ, Content: mustJSON(t, entity.FAQContent{
			Items: []entity.FAQItem{{Question: "Q", Answer: "A"}},
		})},
		{ID: "c1", Type: entity.BlockCTA, Content: mustJSON(t, entity.CTAContent{Heading: "Buy", Label: "Go", Href: "/shop"})},
		{ID: "t1", Type: entity.BlockText, Content: mustJSON(t, entity.TextContent{Markdown: "![img](x.png)"})},
		{ID: "ct1", Type: entity.BlockComparisonTable, Content: mustJSON(t, entity.ComparisonTableContent{Columns: []string{"A"}, Rows: [][]string{{"1"}}})},
	}}

	assert.Empty(t, b.BuildRequests(context.Background(), content, nil))
}

func TestBuildRequestsTechnique(t *testing.T) {
	b := NewBuilder()
	ctx := context.Background()

	// 无视频时 technique 必须出图，即使没有提示词
	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{
		{ID: "tq1", Type: entity.BlockTechnique, Content: mustJSON(t, entity.TechniqueContent{Title: "Tamper technique"})},
	}}
	reqs := b.BuildRequests(ctx, content, nil)
	require.Len(t, reqs, 1)
	assert.Equal(t, "tq1-technique", reqs[0].ID)
	assert.Contains(t, reqs[0].Prompt, "Tamper technique")

	// 白名单内的视频替代图片
	content.Blocks[0].Content = mustJSON(t, entity.TechniqueContent{
		Title:    "Tamper technique",
		VideoURL: "https://www.youtube.com/watch?v=abc",
	})
	assert.Empty(t, b.BuildRequests(ctx, content, nil))

	// 白名单外的视频不作数
	content.Blocks[0].Content = mustJSON(t, entity.TechniqueContent{
		Title:    "Tamper technique",
		VideoURL: "https://example.com/video.avi",
	})
	assert.Len(t, b.BuildRequests(ctx, content, nil), 1)
}

func TestBuildRequestsUseExistingSkipsBlock(t *testing.T) {
	b := NewBuilder()
	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{
		{ID: "b1", Type: entity.BlockHero, Content: mustJSON(t, entity.HeroContent{Title: "T", ImagePrompt: "p"})},
	}}
	strategies := map[string]entity.ImageStrategy{
		"b1": {UseExisting: true, ExistingURL: "/assets/a3500.png"},
	}

	assert.Empty(t, b.BuildRequests(context.Background(), content, strategies))
}

func TestBuildRequestsMalformedBlockSkipped(t *testing.T) {
	b := NewBuilder()
	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{
		{ID: "bad", Type: entity.BlockHero, Content: json.RawMessage(`{"title":`)},
		{ID: "ok", Type: entity.BlockSplitContent, Content: mustJSON(t, entity.SplitContentPayload{Heading: "H", Body: "B", ImagePrompt: "p"})},
	}}

	reqs := b.BuildRequests(context.Background(), content, nil)
	require.Len(t, reqs, 1)
	assert.Equal(t, "ok-split", reqs[0].ID)
}

func TestDecideStrategyReusesExistingAsset(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name    string
		payload string
		reuse   bool
		url     string
	}{
		{"site relative path", `{"title":"T","existing_image_url":"/assets/a3500.png"}`, true, "/assets/a3500.png"},
		{"https absolute", `{"title":"T","existing_image_url":"https://cdn.example.com/a.png"}`, true, "https://cdn.example.com/a.png"},
		{"no existing asset", `{"title":"T","image_prompt":"p"}`, false, ""},
		{"scheme-relative rejected", `{"existing_image_url":"//evil.example.com/a.png"}`, false, ""},
		{"non-http scheme rejected", `{"existing_image_url":"ftp://host/a.png"}`, false, ""},
		{"blank url", `{"existing_image_url":"   "}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := b.DecideStrategy(&entity.ContentBlock{
				ID:      "b1",
				Type:    entity.BlockHero,
				Content: json.RawMessage(tt.payload),
			})
			assert.Equal(t, tt.reuse, st.UseExisting)
			assert.Equal(t, tt.url, st.ExistingURL)
		})
	}

	assert.False(t, b.DecideStrategy(nil).UseExisting)
	assert.False(t, b.DecideStrategy(&entity.ContentBlock{ID: "x"}).UseExisting)
}
