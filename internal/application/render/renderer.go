// Package render 实现内容块到标记片段的确定性渲染
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/pkg/logger"
)

// Renderer 块渲染器
// 纯函数式：无网络无存储，图片地址由 (pageSlug, imageID) 确定性计算，
// 渲染可以先于图片生成完成。未知块类型渲染为空片段而不是报错。
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer 创建渲染器
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
	}
}

// imageView 渲染标记中的一张生成图片
// ID 与请求构建器使用同一命名函数计算，两侧永不分叉。
type imageView struct {
	ID  string
	URL string
	Alt string
}

// imageSource 决定块内图片视图的来源
// 复用策略生效时所有视图指向既有素材且不带生成 ID，
// 渲染出的 data-gen-image 集合与请求构建器的 ID 集合保持一致。
type imageSource struct {
	pageSlug string
	strategy entity.ImageStrategy
}

func (s imageSource) view(blockType entity.BlockType, blockID string, subIndex int, alt string) *imageView {
	if s.strategy.UseExisting {
		if u := strings.TrimSpace(s.strategy.ExistingURL); u != "" {
			return &imageView{URL: u, Alt: alt}
		}
		return nil
	}
	id := entity.ImageID(blockType, blockID, subIndex)
	if id == "" {
		return nil
	}
	return &imageView{
		ID:  id,
		URL: entity.ImageURL(s.pageSlug, id),
		Alt: alt,
	}
}

// Render 渲染单个内容块
// 未知类型或载荷解析失败返回空片段并记录日志，一个坏块不应拖垮整页。
func (r *Renderer) Render(ctx context.Context, binding entity.SlotBinding, pageSlug string, strategy entity.ImageStrategy) string {
	block := binding.Block
	if block == nil {
		return ""
	}

	inner, err := r.renderInner(block, imageSource{pageSlug: pageSlug, strategy: strategy})
	if err != nil {
		logger.Warn(ctx, "block rendered as empty fragment",
			"block_id", block.ID,
			"block_type", string(block.Type),
			"error", err.Error(),
		)
		return ""
	}
	if inner == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<section class="pw-block pw-block--`)
	sb.WriteString(string(block.Type))
	if v := binding.Slot.Variant; v != "" {
		sb.WriteString(` pw-block--` + template.HTMLEscapeString(v))
	}
	sb.WriteString(`" data-block-id="`)
	sb.WriteString(template.HTMLEscapeString(block.ID))
	sb.WriteString(`" data-width="`)
	sb.WriteString(template.HTMLEscapeString(binding.Slot.Width))
	sb.WriteString(`"`)
	style := binding.SectionStyle
	if style == "" {
		style = block.SectionStyle
	}
	if style != "" {
		sb.WriteString(` data-section-style="` + template.HTMLEscapeString(style) + `"`)
	}
	sb.WriteString(">")
	sb.WriteString(inner)
	sb.WriteString("</section>")
	return sb.String()
}

func (r *Renderer) renderInner(block *entity.ContentBlock, imgs imageSource) (string, error) {
	switch block.Type {
	case entity.BlockHero:
		var c entity.HeroContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderHero(block, &c, imgs)

	case entity.BlockCards:
		var c entity.CardsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderCards(block, &c, imgs)

	case entity.BlockProductCards:
		var c entity.ProductCardsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderProductCards(block, &c, imgs)

	case entity.BlockComparisonTable:
		var c entity.ComparisonTableContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderComparisonTable(&c)

	case entity.BlockColumns:
		var c entity.ColumnsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderColumns(block, &c, imgs)

	case entity.BlockSplitContent:
		var c entity.SplitContentPayload
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderSplitContent(block, &c, imgs)

	case entity.BlockRecipeDetail:
		var c entity.RecipeDetailContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderRecipeDetail(block, &c, imgs)

	case entity.BlockRecipeCards:
		var c entity.RecipeCardsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderRecipeCards(block, &c, imgs)

	case entity.BlockTechnique:
		var c entity.TechniqueContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderTechnique(block, &c, imgs)

	case entity.BlockFAQ:
		var c entity.FAQContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderFAQ(&c)

	case entity.BlockCTA:
		var c entity.CTAContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderCTA(&c)

	case entity.BlockText:
		var c entity.TextContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return "", err
		}
		return r.renderText(&c)
	}
	return "", fmt.Errorf("unknown block type %q", block.Type)
}

func (r *Renderer) renderHero(block *entity.ContentBlock, c *entity.HeroContent, imgs imageSource) (string, error) {
	var img *imageView
	if strings.TrimSpace(c.ImagePrompt) != "" {
		img = imgs.view(block.Type, block.ID, 0, c.Title)
	}
	return execute(heroTemplate, map[string]any{
		"Title":    c.Title,
		"Subtitle": c.Subtitle,
		"CTALabel": c.CTALabel,
		"CTAHref":  c.CTAHref,
		"Image":    img,
	})
}

func (r *Renderer) renderCards(block *entity.ContentBlock, c *entity.CardsContent, imgs imageSource) (string, error) {
	type cardView struct {
		Title string
		Body  string
		Href  string
		Image *imageView
	}
	views := make([]cardView, 0, len(c.Cards))
	for i, card := range c.Cards {
		v := cardView{Title: card.Title, Body: card.Body, Href: card.Href}
		if strings.TrimSpace(card.ImagePrompt) != "" {
			v.Image = imgs.view(block.Type, block.ID, i, card.Title)
		}
		views = append(views, v)
	}
	return execute(cardsTemplate, map[string]any{"Heading": c.Heading, "Cards": views})
}

func (r *Renderer) renderProductCards(block *entity.ContentBlock, c *entity.ProductCardsContent, imgs imageSource) (string, error) {
	type productView struct {
		Name     string
		Tagline  string
		Price    string
		Features []string
		Image    *imageView
	}
	views := make([]productView, 0, len(c.Products))
	for i, p := range c.Products {
		v := productView{Name: p.Name, Tagline: p.Tagline, Price: p.Price, Features: p.Features}
		if strings.TrimSpace(p.ImagePrompt) != "" {
			v.Image = imgs.view(block.Type, block.ID, i, p.Name)
		}
		views = append(views, v)
	}
	return execute(productCardsTemplate, map[string]any{"Heading": c.Heading, "Products": views})
}

func (r *Renderer) renderComparisonTable(c *entity.ComparisonTableContent) (string, error) {
	return execute(comparisonTableTemplate, map[string]any{
		"Heading":  c.Heading,
		"Columns":  c.Columns,
		"Rows":     c.Rows,
		"FootNote": c.FootNote,
	})
}

func (r *Renderer) renderColumns(block *entity.ContentBlock, c *entity.ColumnsContent, imgs imageSource) (string, error) {
	type columnView struct {
		Heading string
		Body    string
		Image   *imageView
	}
	views := make([]columnView, 0, len(c.Columns))
	for i, col := range c.Columns {
		v := columnView{Heading: col.Heading, Body: col.Body}
		if strings.TrimSpace(col.ImagePrompt) != "" {
			v.Image = imgs.view(block.Type, block.ID, i, col.Heading)
		}
		views = append(views, v)
	}
	return execute(columnsTemplate, map[string]any{"Heading": c.Heading, "Columns": views})
}

func (r *Renderer) renderSplitContent(block *entity.ContentBlock, c *entity.SplitContentPayload, imgs imageSource) (string, error) {
	var img *imageView
	if strings.TrimSpace(c.ImagePrompt) != "" {
		img = imgs.view(block.Type, block.ID, 0, c.Heading)
	}
	side := "left"
	if c.ImageRight {
		side = "right"
	}
	return execute(splitContentTemplate, map[string]any{
		"Heading": c.Heading,
		"Body":    c.Body,
		"Side":    side,
		"Image":   img,
	})
}

func (r *Renderer) renderRecipeDetail(block *entity.ContentBlock, c *entity.RecipeDetailContent, imgs imageSource) (string, error) {
	var img *imageView
	if strings.TrimSpace(c.ImagePrompt) != "" {
		img = imgs.view(block.Type, block.ID, 0, c.Name)
	}
	return execute(recipeDetailTemplate, map[string]any{
		"Name":        c.Name,
		"Description": c.Description,
		"Ingredients": c.Ingredients,
		"Steps":       c.Steps,
		"PrepTime":    c.PrepTime,
		"Image":       img,
	})
}

func (r *Renderer) renderRecipeCards(block *entity.ContentBlock, c *entity.RecipeCardsContent, imgs imageSource) (string, error) {
	type recipeView struct {
		Name        string
		Description string
		PrepTime    string
		Image       *imageView
	}
	views := make([]recipeView, 0, len(c.Recipes))
	for i, rc := range c.Recipes {
		v := recipeView{Name: rc.Name, Description: rc.Description, PrepTime: rc.PrepTime}
		if strings.TrimSpace(rc.ImagePrompt) != "" {
			v.Image = imgs.view(block.Type, block.ID, i, rc.Name)
		}
		views = append(views, v)
	}
	return execute(recipeCardsTemplate, map[string]any{"Heading": c.Heading, "Recipes": views})
}

func (r *Renderer) renderTechnique(block *entity.ContentBlock, c *entity.TechniqueContent, imgs imageSource) (string, error) {
	data := map[string]any{
		"Title": c.Title,
		"Body":  c.Body,
	}
	// 与请求构建器同一条规则：仅白名单内的视频可以替代图片
	if entity.IsAllowedVideoURL(c.VideoURL) {
		data["VideoURL"] = c.VideoURL
	} else {
		data["Image"] = imgs.view(block.Type, block.ID, 0, c.Title)
	}
	return execute(techniqueTemplate, data)
}

func (r *Renderer) renderFAQ(c *entity.FAQContent) (string, error) {
	return execute(faqTemplate, map[string]any{"Heading": c.Heading, "Items": c.Items})
}

func (r *Renderer) renderCTA(c *entity.CTAContent) (string, error) {
	return execute(ctaTemplate, map[string]any{
		"Heading": c.Heading,
		"Body":    c.Body,
		"Label":   c.Label,
		"Href":    c.Href,
	})
}

func (r *Renderer) renderText(c *entity.TextContent) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(c.Markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return execute(textTemplate, map[string]any{
		"Heading": c.Heading,
		"Body":    template.HTML(buf.String()),
	})
}

func execute(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
