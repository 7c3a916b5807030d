package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentBlock 单个生成内容块
// 载荷按块类型解码，块序与所选模板展开后的块位序按位置对齐。
type ContentBlock struct {
	ID           string          `json:"id"`
	Type         BlockType       `json:"type"`
	Variant      string          `json:"variant,omitempty"`
	SectionStyle string          `json:"section_style,omitempty"`
	Content      json.RawMessage `json:"content"`
}

// ContentMeta 生成内容的元数据
type ContentMeta struct {
	Provider         string  `json:"provider,omitempty"`
	Model            string  `json:"model,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

// GeneratedContent 内容生成器的结构化输出
type GeneratedContent struct {
	Headline    string         `json:"headline"`
	Subheadline string         `json:"subheadline,omitempty"`
	Blocks      []ContentBlock `json:"blocks"`
	Meta        ContentMeta    `json:"meta,omitempty"`
	Citations   []string       `json:"citations,omitempty"`
}

// Validate 对生成内容做结构校验，避免错位内容进入渲染
func (c *GeneratedContent) Validate() error {
	if c == nil {
		return fmt.Errorf("content is nil")
	}
	if strings.TrimSpace(c.Headline) == "" {
		return fmt.Errorf("headline is required")
	}
	if len(c.Blocks) == 0 {
		return fmt.Errorf("at least one block is required")
	}
	seen := make(map[string]struct{}, len(c.Blocks))
	for i := range c.Blocks {
		b := &c.Blocks[i]
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("blocks[%d].id is required", i)
		}
		if _, ok := seen[b.ID]; ok {
			return fmt.Errorf("blocks[%d].id duplicated: %s", i, b.ID)
		}
		seen[b.ID] = struct{}{}
		if b.Type == "" {
			return fmt.Errorf("blocks[%d].type is required", i)
		}
		if len(b.Content) == 0 {
			return fmt.Errorf("blocks[%d].content is required", i)
		}
	}
	return nil
}

// 各块类型的载荷结构。未知字段被忽略，渲染器只消费已知字段。

// HeroContent hero 块载荷
type HeroContent struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	CTALabel    string `json:"cta_label,omitempty"`
	CTAHref     string `json:"cta_href,omitempty"`
}

// Card 通用卡片
type Card struct {
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	Href        string `json:"href,omitempty"`
}

// CardsContent cards 块载荷
type CardsContent struct {
	Heading string `json:"heading,omitempty"`
	Cards   []Card `json:"cards"`
}

// ProductCard 产品卡片
type ProductCard struct {
	Name        string   `json:"name"`
	Tagline     string   `json:"tagline,omitempty"`
	Price       string   `json:"price,omitempty"`
	Features    []string `json:"features,omitempty"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
}

// ProductCardsContent product-cards 块载荷
type ProductCardsContent struct {
	Heading  string        `json:"heading,omitempty"`
	Products []ProductCard `json:"products"`
}

// ComparisonTableContent comparison-table 块载荷（纯文本，无图片子元素）
type ComparisonTableContent struct {
	Heading  string     `json:"heading,omitempty"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	FootNote string     `json:"foot_note,omitempty"`
}

// Column columns 块中的一列
type Column struct {
	Heading     string `json:"heading,omitempty"`
	Body        string `json:"body"`
	ImagePrompt string `json:"image_prompt,omitempty"`
}

// ColumnsContent columns 块载荷
type ColumnsContent struct {
	Heading string   `json:"heading,omitempty"`
	Columns []Column `json:"columns"`
}

// SplitContent split-content 块载荷，图文左右布局
type SplitContentPayload struct {
	Heading     string `json:"heading"`
	Body        string `json:"body"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	ImageRight  bool   `json:"image_right,omitempty"`
}

// RecipeIngredient 配方原料
type RecipeIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// RecipeDetailContent recipe-detail 块载荷
type RecipeDetailContent struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Steps       []string           `json:"steps"`
	PrepTime    string             `json:"prep_time,omitempty"`
	ImagePrompt string             `json:"image_prompt,omitempty"`
}

// RecipeCard 配方卡片
type RecipeCard struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PrepTime    string `json:"prep_time,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
}

// RecipeCardsContent recipe-cards 块载荷
type RecipeCardsContent struct {
	Heading string       `json:"heading,omitempty"`
	Recipes []RecipeCard `json:"recipes"`
}

// TechniqueContent technique 块载荷
// VideoURL 通过固定白名单校验；无有效视频时该块必须生成图片。
type TechniqueContent struct {
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
}

// FAQItem 常见问题条目
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQContent faq 块载荷（纯文本，无图片子元素）
type FAQContent struct {
	Heading string    `json:"heading,omitempty"`
	Items   []FAQItem `json:"items"`
}

// CTAContent cta 块载荷（纯文本，无图片子元素）
type CTAContent struct {
	Heading string `json:"heading"`
	Body    string `json:"body,omitempty"`
	Label   string `json:"label"`
	Href    string `json:"href"`
}

// TextContent text 块载荷，正文为 Markdown（纯文本，无图片子元素）
type TextContent struct {
	Heading  string `json:"heading,omitempty"`
	Markdown string `json:"markdown"`
}
