// Package imaging 实现图片策略决策与图片请求构建
package imaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/pkg/logger"
)

// 各块类型的固定出图规格
const (
	aspectWide   = "16:9"
	aspectSquare = "1:1"
	sizeWide     = "1792x1024"
	sizeSquare   = "1024x1024"
)

// Builder 图片请求构建器
// 按块类型分派，同一命名函数产出的图片 ID 与渲染器烙进标记的 ID 完全一致。
type Builder struct{}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{}
}

// DecideStrategy 单块的图片策略
// 内容载荷携带可用的 existing_image_url 时选择复用既有素材，
// 该块不进入生成队列，渲染侧同步改用既有地址。其余情况走生成。
func (b *Builder) DecideStrategy(block *entity.ContentBlock) entity.ImageStrategy {
	if block == nil || len(block.Content) == 0 {
		return entity.ImageStrategy{}
	}
	var payload struct {
		ExistingImageURL string `json:"existing_image_url"`
	}
	if err := json.Unmarshal(block.Content, &payload); err != nil {
		return entity.ImageStrategy{}
	}
	u := strings.TrimSpace(payload.ExistingImageURL)
	if u == "" || !reusableAssetURL(u) {
		return entity.ImageStrategy{}
	}
	return entity.ImageStrategy{UseExisting: true, ExistingURL: u}
}

// reusableAssetURL 仅接受站内相对路径或 http(s) 绝对地址
func reusableAssetURL(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// BuildRequests 为整页内容构建图片请求列表
// 纯文本类块（faq/cta/text/comparison-table）永远产出零条请求；
// technique 块除非携带白名单内的视频地址，否则必须出一张图。
// strategies 按块 ID 覆盖默认策略，UseExisting 的块跳过生成。
func (b *Builder) BuildRequests(ctx context.Context, content *entity.GeneratedContent, strategies map[string]entity.ImageStrategy) []entity.ImageRequest {
	if content == nil {
		return nil
	}

	var requests []entity.ImageRequest
	for i := range content.Blocks {
		block := &content.Blocks[i]
		if st, ok := strategies[block.ID]; ok && st.UseExisting {
			continue
		}
		reqs, err := b.buildForBlock(block)
		if err != nil {
			logger.Warn(ctx, "skipping image requests for malformed block",
				"block_id", block.ID,
				"block_type", string(block.Type),
				"error", err.Error(),
			)
			continue
		}
		requests = append(requests, reqs...)
	}
	return requests
}

func (b *Builder) buildForBlock(block *entity.ContentBlock) ([]entity.ImageRequest, error) {
	switch block.Type {
	case entity.BlockHero:
		var c entity.HeroContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		return single(block, c.ImagePrompt, aspectWide, sizeWide), nil

	case entity.BlockCards:
		var c entity.CardsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		var out []entity.ImageRequest
		for i, card := range c.Cards {
			out = appendIndexed(out, block, i, card.ImagePrompt, aspectSquare, sizeSquare)
		}
		return out, nil

	case entity.BlockProductCards:
		var c entity.ProductCardsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		var out []entity.ImageRequest
		for i, p := range c.Products {
			out = appendIndexed(out, block, i, p.ImagePrompt, aspectSquare, sizeSquare)
		}
		return out, nil

	case entity.BlockColumns:
		var c entity.ColumnsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		var out []entity.ImageRequest
		for i, col := range c.Columns {
			out = appendIndexed(out, block, i, col.ImagePrompt, aspectSquare, sizeSquare)
		}
		return out, nil

	case entity.BlockSplitContent:
		var c entity.SplitContentPayload
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		return single(block, c.ImagePrompt, aspectWide, sizeWide), nil

	case entity.BlockRecipeDetail:
		var c entity.RecipeDetailContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		return single(block, c.ImagePrompt, aspectWide, sizeWide), nil

	case entity.BlockRecipeCards:
		var c entity.RecipeCardsContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		var out []entity.ImageRequest
		for i, r := range c.Recipes {
			out = appendIndexed(out, block, i, r.ImagePrompt, aspectSquare, sizeSquare)
		}
		return out, nil

	case entity.BlockTechnique:
		var c entity.TechniqueContent
		if err := json.Unmarshal(block.Content, &c); err != nil {
			return nil, err
		}
		// 白名单内的视频可以替代图片，这是唯一的类型级例外
		if entity.IsAllowedVideoURL(c.VideoURL) {
			return nil, nil
		}
		prompt := strings.TrimSpace(c.ImagePrompt)
		if prompt == "" {
			prompt = fmt.Sprintf("step-by-step demonstration of %s", strings.TrimSpace(c.Title))
		}
		return []entity.ImageRequest{{
			ID:          entity.ImageID(block.Type, block.ID, 0),
			BlockID:     block.ID,
			Prompt:      prompt,
			AspectRatio: aspectWide,
			Size:        sizeWide,
		}}, nil

	case entity.BlockFAQ, entity.BlockCTA, entity.BlockText, entity.BlockComparisonTable:
		return nil, nil
	}
	return nil, nil
}

func single(block *entity.ContentBlock, prompt, aspect, size string) []entity.ImageRequest {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil
	}
	return []entity.ImageRequest{{
		ID:          entity.ImageID(block.Type, block.ID, 0),
		BlockID:     block.ID,
		Prompt:      prompt,
		AspectRatio: aspect,
		Size:        size,
	}}
}

func appendIndexed(dst []entity.ImageRequest, block *entity.ContentBlock, index int, prompt, aspect, size string) []entity.ImageRequest {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return dst
	}
	return append(dst, entity.ImageRequest{
		ID:          entity.ImageID(block.Type, block.ID, index),
		BlockID:     block.ID,
		Prompt:      prompt,
		AspectRatio: aspect,
		Size:        size,
	})
}
