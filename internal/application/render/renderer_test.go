package render

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/application/imaging"
	"pageweave-api/internal/domain/entity"
)

var genImageAttr = regexp.MustCompile(`data-gen-image="([^"]+)"`)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func binding(block entity.ContentBlock, slot entity.BlockSlot) entity.SlotBinding {
	b := block
	return entity.SlotBinding{Slot: slot, Block: &b}
}

func TestRenderHero(t *testing.T) {
	r := NewRenderer()
	html := r.Render(context.Background(), binding(entity.ContentBlock{
		ID:   "b1",
		Type: entity.BlockHero,
		Content: mustJSON(t, entity.HeroContent{
			Title:       "The A3500",
			Subtitle:    "Smart blending",
			ImagePrompt: "studio shot",
			CTALabel:    "Shop now",
			CTAHref:     "/shop/a3500",
		}),
	}, entity.BlockSlot{Type: entity.BlockHero, Variant: "product", Width: "full"}), "the-a3500", entity.ImageStrategy{})

	assert.Contains(t, html, `data-block-id="b1"`)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "The A3500")
	assert.Contains(t, html, `src="/generated/the-a3500/b1-hero.png"`)
	assert.Contains(t, html, `data-gen-image="b1-hero"`)
	assert.Contains(t, html, `href="/shop/a3500"`)
}

// 相同输入的图片 URL 在反复渲染间完全一致。
func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer()
	b := binding(entity.ContentBlock{
		ID:      "b1",
		Type:    entity.BlockSplitContent,
		Content: mustJSON(t, entity.SplitContentPayload{Heading: "H", Body: "B", ImagePrompt: "p"}),
	}, entity.BlockSlot{Type: entity.BlockSplitContent, Width: "wide"})

	first := r.Render(context.Background(), b, "slug", entity.ImageStrategy{})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Render(context.Background(), b, "slug", entity.ImageStrategy{}))
	}
}

func TestRenderUnknownTypeEmptyFragment(t *testing.T) {
	r := NewRenderer()
	html := r.Render(context.Background(), binding(entity.ContentBlock{
		ID:      "x",
		Type:    entity.BlockType("carousel"),
		Content: json.RawMessage(`{}`),
	}, entity.BlockSlot{Width: "wide"}), "slug", entity.ImageStrategy{})
	assert.Empty(t, html)
}

func TestRenderMalformedPayloadEmptyFragment(t *testing.T) {
	r := NewRenderer()
	html := r.Render(context.Background(), binding(entity.ContentBlock{
		ID:      "x",
		Type:    entity.BlockHero,
		Content: json.RawMessage(`{"title":`),
	}, entity.BlockSlot{Type: entity.BlockHero, Width: "full"}), "slug", entity.ImageStrategy{})
	assert.Empty(t, html)
}

func TestRenderTextMarkdown(t *testing.T) {
	r := NewRenderer()
	html := r.Render(context.Background(), binding(entity.ContentBlock{
		ID:      "t1",
		Type:    entity.BlockText,
		Content: mustJSON(t, entity.TextContent{Heading: "Guide", Markdown: "**bold** and *italic*"}),
	}, entity.BlockSlot{Type: entity.BlockText, Width: "narrow"}), "slug", entity.ImageStrategy{})

	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<em>italic</em>")
}

func TestRenderEscapesContent(t *testing.T) {
	r := NewRenderer()
	html := r.Render(context.Background(), binding(entity.ContentBlock{
		ID:      "c1",
		Type:    entity.BlockCTA,
		Content: mustJSON(t, entity.CTAContent{Heading: "<script>alert(1)</script>", Label: "Go", Href: "/x"}),
	}, entity.BlockSlot{Type: entity.BlockCTA, Width: "wide"}), "slug", entity.ImageStrategy{})

	assert.NotContains(t, html, "<script>")
}

func TestRenderTechniqueVideo(t *testing.T) {
	r := NewRenderer()
	ctx := context.Background()

	html := r.Render(ctx, binding(entity.ContentBlock{
		ID:      "tq1",
		Type:    entity.BlockTechnique,
		Content: mustJSON(t, entity.TechniqueContent{Title: "Tamper", VideoURL: "https://youtu.be/abc"}),
	}, entity.BlockSlot{Type: entity.BlockTechnique, Width: "wide"}), "slug", entity.ImageStrategy{})
	assert.Contains(t, html, "<video")
	assert.NotContains(t, html, "data-gen-image")

	html = r.Render(ctx, binding(entity.ContentBlock{
		ID:      "tq1",
		Type:    entity.BlockTechnique,
		Content: mustJSON(t, entity.TechniqueContent{Title: "Tamper"}),
	}, entity.BlockSlot{Type: entity.BlockTechnique, Width: "wide"}), "slug", entity.ImageStrategy{})
	assert.Contains(t, html, `data-gen-image="tq1-technique"`)
}

// 复用既有素材的块渲染既有地址且不携带生成图片 ID，
// 构建器同步跳过该块，两侧的 ID 集合保持一致。
func TestRenderUseExistingImage(t *testing.T) {
	r := NewRenderer()
	b := imaging.NewBuilder()
	ctx := context.Background()

	block := entity.ContentBlock{
		ID:      "h1",
		Type:    entity.BlockHero,
		Content: json.RawMessage(`{"title":"A3500","image_prompt":"p","existing_image_url":"/assets/a3500.png"}`),
	}
	strategy := b.DecideStrategy(&block)
	require.True(t, strategy.UseExisting)

	html := r.Render(ctx, binding(block, entity.BlockSlot{Type: entity.BlockHero, Width: "full"}), "slug", strategy)
	assert.Contains(t, html, `src="/assets/a3500.png"`)
	assert.NotContains(t, html, "data-gen-image")

	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{block}}
	assert.Empty(t, b.BuildRequests(ctx, content, map[string]entity.ImageStrategy{"h1": strategy}))
}

// 分区样式读自槽位绑定。
func TestRenderSectionStyleFromBinding(t *testing.T) {
	r := NewRenderer()
	bd := binding(entity.ContentBlock{
		ID:      "c1",
		Type:    entity.BlockCTA,
		Content: mustJSON(t, entity.CTAContent{Heading: "Go", Label: "Buy", Href: "/x"}),
	}, entity.BlockSlot{Type: entity.BlockCTA, Width: "wide"})
	bd.SectionStyle = "accent"

	html := r.Render(context.Background(), bd, "slug", entity.ImageStrategy{})
	assert.Contains(t, html, `data-section-style="accent"`)
}

// 请求构建器产出的 ID 集合与渲染标记中的 data-gen-image 集合完全一致。
func TestImageIDsMatchBuilderRequests(t *testing.T) {
	r := NewRenderer()
	b := imaging.NewBuilder()
	ctx := context.Background()

	content := &entity.GeneratedContent{Blocks: []entity.ContentBlock{
		{ID: "b1", Type: entity.BlockHero, Content: mustJSON(t, entity.HeroContent{Title: "T", ImagePrompt: "p"})},
		{ID: "b2", Type: entity.BlockProductCards, Content: mustJSON(t, entity.ProductCardsContent{
			Products: []entity.ProductCard{
				{Name: "A3500", ImagePrompt: "a"},
				{Name: "A2500"},
				{Name: "X5", ImagePrompt: "x"},
			},
		})},
		{ID: "b3", Type: entity.BlockTechnique, Content: mustJSON(t, entity.TechniqueContent{Title: "Tamper"})},
		{ID: "b4", Type: entity.BlockFAQ, Content: mustJSON(t, entity.FAQContent{Items: []entity.FAQItem{{Question: "Q", Answer: "A"}}})},
		{ID: "b5", Type: entity.BlockColumns, Content: mustJSON(t, entity.ColumnsContent{
			Columns: []entity.Column{{Body: "x", ImagePrompt: "y"}, {Body: "z"}},
		})},
	}}
	slots := []entity.BlockSlot{
		{Type: entity.BlockHero, Width: "full"},
		{Type: entity.BlockProductCards, Width: "wide"},
		{Type: entity.BlockTechnique, Width: "wide"},
		{Type: entity.BlockFAQ, Width: "narrow"},
		{Type: entity.BlockColumns, Width: "wide"},
	}

	requested := map[string]struct{}{}
	for _, req := range b.BuildRequests(ctx, content, nil) {
		requested[req.ID] = struct{}{}
	}

	rendered := map[string]struct{}{}
	for i := range content.Blocks {
		html := r.Render(ctx, entity.SlotBinding{SlotIndex: i, Slot: slots[i], Block: &content.Blocks[i]}, "slug", entity.ImageStrategy{})
		for _, m := range genImageAttr.FindAllStringSubmatch(html, -1) {
			rendered[m[1]] = struct{}{}
		}
	}

	assert.Equal(t, requested, rendered)
}
