// Package session 实现会话上下文合并
// 将历史轮次的实体累积合并为供意图分类与内容生成消费的上下文。
package session

import (
	"fmt"
	"strings"

	"pageweave-api/internal/domain/entity"
)

// defaultResetPhrases 显式重置信号
// 仅当当前查询包含这些短语之一时才中断上下文继承，话题切换本身不中断。
var defaultResetPhrases = []string{
	"forget",
	"actually",
	"something different",
	"start over",
	"never mind",
}

// constraintKeywords 饮食/过敏/宗教类约束关键词
// 命中约束的目标一旦出现便持续保留到后续所有轮次。
var constraintKeywords = []string{
	"vegan",
	"vegetarian",
	"gluten",
	"dairy-free",
	"lactose",
	"nut allergy",
	"nut-free",
	"allergy",
	"allergic",
	"kosher",
	"halal",
	"keto",
	"paleo",
	"diabetic",
	"low sodium",
	"low sugar",
}

// queryStopWords 提取当前查询主题词时过滤掉的虚词
var queryStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "what": {},
	"which": {}, "who": {}, "how": {}, "do": {}, "does": {}, "can": {},
	"i": {}, "me": {}, "my": {}, "you": {}, "your": {}, "for": {}, "to": {},
	"of": {}, "in": {}, "on": {}, "it": {}, "and": {}, "or": {}, "with": {},
	"best": {}, "good": {}, "great": {}, "want": {}, "need": {}, "get": {},
	"should": {}, "would": {}, "please": {}, "about": {}, "some": {},
}

// Merger 会话上下文合并器
// 无状态，重置短语与约束词表在构造时固定。
type Merger struct {
	resetPhrases []string
}

// NewMerger 创建默认合并器
func NewMerger() *Merger {
	return &Merger{resetPhrases: defaultResetPhrases}
}

// HasResetSignal 判断当前查询是否携带显式重置信号
// 按词边界匹配：重置短语必须作为完整单词（序列）出现，
// "factually" 不命中 "actually"，"unforgettable" 不命中 "forget"。
func (m *Merger) HasResetSignal(query string) bool {
	q := " " + strings.Join(words(query), " ") + " "
	for _, p := range m.resetPhrases {
		if strings.Contains(q, " "+p+" ") {
			return true
		}
	}
	return false
}

// Merge 将历史轮次与当前查询合并为上下文
// 默认累积：所有历史轮次的产品/食材/目标取并集；跨意图切换时
// 合成融合目标短语而非简单拼接关键词。历史为空或命中重置信号时返回空上下文。
func (m *Merger) Merge(session *entity.SessionContext, currentQuery string) *entity.MergedContext {
	merged := &entity.MergedContext{}
	if session.Empty() || m.HasResetSignal(currentQuery) {
		return merged
	}

	for _, turn := range session.Turns {
		merged.Products = appendUnique(merged.Products, turn.Entities.Products...)
		merged.Ingredients = appendUnique(merged.Ingredients, turn.Entities.Ingredients...)
		merged.Goals = appendUnique(merged.Goals, turn.Entities.Goals...)

		for _, g := range turn.Entities.Goals {
			if isConstraint(g) {
				merged.Constraints = appendUnique(merged.Constraints, g)
			}
		}
		if uc := strings.TrimSpace(turn.Entities.UserContext); uc != "" && isConstraint(uc) {
			merged.Constraints = appendUnique(merged.Constraints, uc)
		}
	}

	merged.Goals = appendUnique(merged.Goals, m.blendGoals(merged, currentQuery)...)

	merged.ContextText = m.summarize(session, merged)
	return merged
}

// blendGoals 合成跨轮次的融合目标短语
// 每个历史主题（目标+食材，取前三个）与当前查询主题词各组合一条，
// 例如历史聊过 smoothies、当前问 blender 时产出 "blender for smoothies"。
// 主题顺序随轮次追加保持稳定，已合成过的短语在后续合并中原样复现。
func (m *Merger) blendGoals(merged *entity.MergedContext, currentQuery string) []string {
	focus := extractFocus(currentQuery)
	if focus == "" {
		return nil
	}

	themes := make([]string, 0, len(merged.Goals)+len(merged.Ingredients))
	themes = append(themes, merged.Goals...)
	themes = append(themes, merged.Ingredients...)
	if len(themes) > 3 {
		themes = themes[:3]
	}

	out := make([]string, 0, len(themes))
	for _, theme := range themes {
		out = append(out, fmt.Sprintf("%s for %s", focus, theme))
	}
	return out
}

// summarize 生成供提示词消费的自然语言摘要
func (m *Merger) summarize(session *entity.SessionContext, merged *entity.MergedContext) string {
	var sb strings.Builder
	for i, turn := range session.Turns {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("Turn %d: %q", i+1, turn.Query))
		if turn.Intent != "" {
			sb.WriteString(fmt.Sprintf(" (intent: %s)", turn.Intent))
		}
		sb.WriteString(".")
	}
	if len(merged.Products) > 0 {
		sb.WriteString(" Products discussed: " + strings.Join(merged.Products, ", ") + ".")
	}
	if len(merged.Ingredients) > 0 {
		sb.WriteString(" Ingredients mentioned: " + strings.Join(merged.Ingredients, ", ") + ".")
	}
	if len(merged.Goals) > 0 {
		sb.WriteString(" Goals so far: " + strings.Join(merged.Goals, ", ") + ".")
	}
	if len(merged.Constraints) > 0 {
		sb.WriteString(" Standing constraints: " + strings.Join(merged.Constraints, ", ") + ".")
	}
	return strings.TrimSpace(sb.String())
}

// words 小写分词，非字母数字一律视为分隔符
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

// extractFocus 从当前查询提取主题词（过滤虚词后剩余的实词）
func extractFocus(query string) string {
	keep := make([]string, 0, 4)
	for _, f := range words(query) {
		if _, stop := queryStopWords[f]; stop {
			continue
		}
		keep = append(keep, f)
	}
	if len(keep) > 3 {
		keep = keep[:3]
	}
	return strings.Join(keep, " ")
}

func isConstraint(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range constraintKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if strings.EqualFold(existing, v) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

