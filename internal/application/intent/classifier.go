// Package intent 实现意图分类与确定性实体抽取
package intent

import (
	"context"
	"strings"

	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/workflow/chain"
	wfmodel "pageweave-api/internal/workflow/model"
	"pageweave-api/pkg/logger"
)

// validIntents 模型允许产出的意图值
var validIntents = map[entity.IntentType]struct{}{
	entity.IntentProductInfo: {},
	entity.IntentComparison:  {},
	entity.IntentRecipe:      {},
	entity.IntentSupport:     {},
	entity.IntentCampaign:    {},
	entity.IntentBrand:       {},
	entity.IntentGeneral:     {},
}

// intentContentTypes 意图到内容类型集合的确定性映射
var intentContentTypes = map[entity.IntentType][]string{
	entity.IntentProductInfo: {"product"},
	entity.IntentComparison:  {"product", "comparison"},
	entity.IntentRecipe:      {"recipe"},
	entity.IntentSupport:     {"faq", "article"},
	entity.IntentCampaign:    {"product", "campaign"},
	entity.IntentBrand:       {"article"},
	entity.IntentGeneral:     {"article"},
}

// Classifier 意图分类器
// 包装意图识别链，任何调用或解析失败都降级为固定的默认分类，从不向上抛错。
type Classifier struct {
	chain *chain.IntentChain
	cfg   *config.LLMConfig
}

// NewClassifier 创建意图分类器
func NewClassifier(c *chain.IntentChain, cfg *config.LLMConfig) *Classifier {
	return &Classifier{chain: c, cfg: cfg}
}

// Classify 对当前查询做一次意图分类
// merged 为会话合并上下文，其摘要随查询一并送入模型。
func (c *Classifier) Classify(ctx context.Context, siteID, query string, merged *entity.MergedContext) *entity.IntentClassification {
	if c == nil || c.chain == nil || c.cfg == nil {
		return entity.DefaultClassification()
	}

	in := &wfmodel.IntentClassifyInput{
		Query:    query,
		SiteID:   siteID,
		Provider: c.cfg.DefaultProvider,
	}
	if merged != nil {
		in.SessionSummary = merged.ContextText
	}
	if p, ok := c.cfg.Providers[c.cfg.DefaultProvider]; ok {
		in.Model = p.Model
	}

	out, err := c.chain.Invoke(ctx, in)
	if err != nil {
		logger.Warn(ctx, "intent classification degraded to default",
			"site_id", siteID,
			"error", err.Error(),
		)
		return entity.DefaultClassification()
	}

	return normalize(ctx, out)
}

// normalize 把模型输出收敛为合法的分类记录
// 非法意图值回落为 general，置信度收紧到 [0,1]。
func normalize(ctx context.Context, out *wfmodel.IntentClassifyOutput) *entity.IntentClassification {
	it := entity.IntentType(strings.ToLower(strings.TrimSpace(out.Intent)))
	if _, ok := validIntents[it]; !ok {
		logger.Warn(ctx, "classifier produced unknown intent, using general", "intent", out.Intent)
		it = entity.IntentGeneral
	}

	confidence := out.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &entity.IntentClassification{
		IntentType:   it,
		Confidence:   confidence,
		LayoutID:     strings.TrimSpace(out.Layout),
		ContentTypes: intentContentTypes[it],
		Entities: entity.IntentEntities{
			Products:    trimAll(out.Products),
			Ingredients: trimAll(out.Ingredients),
			Goals:       trimAll(out.Goals),
			UserContext: strings.TrimSpace(out.UserContext),
		},
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
