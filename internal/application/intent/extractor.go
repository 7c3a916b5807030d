package intent

import (
	"context"
	"strings"

	"pageweave-api/internal/application/layout"
	"pageweave-api/internal/domain/entity"
)

// knownIngredients 查询中可确定性识别的常见食材
var knownIngredients = []string{
	"mango", "banana", "strawberry", "blueberry", "raspberry", "pineapple",
	"spinach", "kale", "avocado", "carrot", "beet", "ginger", "turmeric",
	"almond", "cashew", "peanut", "oat", "coconut", "yogurt", "tomato",
	"apple", "orange", "lemon", "lime", "cucumber", "celery", "date",
}

// Extractor 确定性实体抽取器
// 与上下文检索并行运行，直接从查询文本识别产品与食材，
// 产出与分类器实体取并集，补足模型可能漏掉的精确命中。
type Extractor struct {
	products *layout.ProductCatalog
}

// NewExtractor 创建实体抽取器
func NewExtractor(products *layout.ProductCatalog) *Extractor {
	return &Extractor{products: products}
}

// Extract 从查询与合并上下文中抽取实体
func (e *Extractor) Extract(_ context.Context, query string, merged *entity.MergedContext) *entity.IntentEntities {
	out := &entity.IntentEntities{}
	q := strings.ToLower(query)

	if e != nil && e.products != nil {
		tokens := tokenize(q)
		for _, tok := range tokens {
			if e.products.Known(tok) {
				out.Products = appendUnique(out.Products, tok)
			}
		}
	}

	for _, ing := range knownIngredients {
		if containsWord(q, ing) {
			out.Ingredients = appendUnique(out.Ingredients, ing)
		}
	}

	if merged != nil {
		out.Products = appendUnique(out.Products, merged.Products...)
		out.Ingredients = appendUnique(out.Ingredients, merged.Ingredients...)
		out.Goals = appendUnique(out.Goals, merged.Goals...)
	}
	return out
}

// MergeEntities 分类器实体与确定性抽取实体的并集
func MergeEntities(classified entity.IntentEntities, extracted *entity.IntentEntities) entity.IntentEntities {
	if extracted == nil {
		return classified
	}
	merged := entity.IntentEntities{
		Products:    appendUnique(nil, classified.Products...),
		Ingredients: appendUnique(nil, classified.Ingredients...),
		Goals:       appendUnique(nil, classified.Goals...),
		UserContext: classified.UserContext,
	}
	merged.Products = appendUnique(merged.Products, extracted.Products...)
	merged.Ingredients = appendUnique(merged.Ingredients, extracted.Ingredients...)
	merged.Goals = appendUnique(merged.Goals, extracted.Goals...)
	return merged
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

// containsWord 按词边界匹配，避免 "oat" 命中 "goat" 一类误报
func containsWord(text, word string) bool {
	for _, tok := range tokenize(text) {
		if tok == word || tok == word+"s" || tok == word+"es" {
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
