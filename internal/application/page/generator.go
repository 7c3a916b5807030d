package page

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/workflow/chain"
	wfmodel "pageweave-api/internal/workflow/model"
	apperrors "pageweave-api/pkg/errors"
)

const maxRetrievedContextRunes = 6000

// Generator 结构化内容生成器
// 包装内容生成链并做结构校验：解析失败或结构不合法是致命错误，
// 内容过于核心，不允许像分类那样静默兜底。
type Generator struct {
	chain *chain.ContentChain
	cfg   *config.LLMConfig
}

// NewGenerator 创建内容生成器
func NewGenerator(c *chain.ContentChain, cfg *config.LLMConfig) *Generator {
	return &Generator{chain: c, cfg: cfg}
}

var _ ContentGenerator = (*Generator)(nil)

// Generate 生成整页结构化内容
func (g *Generator) Generate(ctx context.Context, in *GenerateContentInput) (*entity.GeneratedContent, error) {
	if g == nil || g.chain == nil {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "content generator not configured")
	}
	if in == nil || in.Template == nil {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "generation input is incomplete")
	}

	chainIn := &wfmodel.ContentGenerateInput{
		Query:            in.Query,
		LayoutID:         string(in.Template.ID),
		SlotPlan:         buildSlotPlan(in.Template),
		MergedContext:    buildMergedContextText(in.Merged),
		RetrievedContext: buildRetrievedContextText(in.Retrieval),
		SiteID:           in.SiteID,
	}
	if g.cfg != nil {
		chainIn.Provider = g.cfg.DefaultProvider
		if p, ok := g.cfg.Providers[g.cfg.DefaultProvider]; ok {
			chainIn.Model = p.Model
		}
	}

	out, err := g.chain.Invoke(ctx, chainIn)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "page content generation failed").WithError(err)
	}

	content := &entity.GeneratedContent{}
	if err := json.Unmarshal([]byte(out.RawJSON), content); err != nil {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "content generator returned malformed JSON").WithError(err)
	}
	normalizeBlockIDs(content)
	if err := content.Validate(); err != nil {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "generated content failed validation").WithError(err)
	}

	content.Meta.Provider = out.Meta.Provider
	content.Meta.Model = out.Meta.Model
	content.Meta.PromptTokens = out.Meta.PromptTokens
	content.Meta.CompletionTokens = out.Meta.CompletionTokens
	return content, nil
}

// normalizeBlockIDs 为缺失 ID 的块补上确定性标识
// 标识只需稳定可预测，图片 ID 与渲染标记都从它派生。
func normalizeBlockIDs(content *entity.GeneratedContent) {
	if content == nil {
		return
	}
	for i := range content.Blocks {
		if strings.TrimSpace(content.Blocks[i].ID) == "" {
			content.Blocks[i].ID = fmt.Sprintf("block-%d", i)
		}
	}
}

// buildSlotPlan 把版式槽位展开为逐行文本描述，供提示词消费
func buildSlotPlan(tpl *entity.LayoutTemplate) string {
	var sb strings.Builder
	for i, slot := range tpl.FlattenSlots() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s", i, slot.Type))
		if slot.Variant != "" {
			sb.WriteString("/" + slot.Variant)
		}
		if style := tpl.SectionStyleFor(i); style != "" {
			sb.WriteString(fmt.Sprintf(" (section: %s)", style))
		}
	}
	return sb.String()
}

func buildMergedContextText(merged *entity.MergedContext) string {
	if merged == nil || merged.Empty() {
		return "(fresh session, no prior context)"
	}
	if merged.ContextText != "" {
		return merged.ContextText
	}
	var parts []string
	if len(merged.Products) > 0 {
		parts = append(parts, "products: "+strings.Join(merged.Products, ", "))
	}
	if len(merged.Ingredients) > 0 {
		parts = append(parts, "ingredients: "+strings.Join(merged.Ingredients, ", "))
	}
	if len(merged.Goals) > 0 {
		parts = append(parts, "goals: "+strings.Join(merged.Goals, ", "))
	}
	if len(merged.Constraints) > 0 {
		parts = append(parts, "constraints: "+strings.Join(merged.Constraints, ", "))
	}
	return strings.Join(parts, "; ")
}

func buildRetrievedContextText(res *entity.RetrievalResult) string {
	if res.Empty() {
		return "(no reference material retrieved)"
	}
	var sb strings.Builder
	total := 0
	for i, chunk := range res.Chunks {
		text := strings.TrimSpace(chunk.Text)
		if text == "" {
			continue
		}
		if total+len(text) > maxRetrievedContextRunes {
			break
		}
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		if chunk.Title != "" {
			sb.WriteString(fmt.Sprintf("[%s] %s\n", chunk.ContentType, chunk.Title))
		}
		sb.WriteString(text)
		total += len(text)
	}
	return sb.String()
}
