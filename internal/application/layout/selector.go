package layout

import (
	"regexp"
	"strings"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/pkg/metrics"
)

// DecisionSource 布局决策路径
type DecisionSource string

const (
	// DecisionOverride 词法强制：裸产品名查询直接锁定单品详情
	DecisionOverride DecisionSource = "override"
	// DecisionTrusted 置信度达标，采信分类器给出的布局
	DecisionTrusted DecisionSource = "trusted"
	// DecisionRule 规则兜底
	DecisionRule DecisionSource = "rule"
)

// Decision 布局选择结果
// 显式携带决策路径，供调整阶段与测试断言使用。
type Decision struct {
	Template *entity.LayoutTemplate
	Source   DecisionSource
	// MatchedProduct 裸产品名命中时记录规范产品名
	MatchedProduct string
}

// Selector 两级布局选择器
// 第一遍基于分类结果与词法规则选择，检索完成后由 Adjust 做第二遍修正。
type Selector struct {
	catalog             *Catalog
	products            *ProductCatalog
	confidenceThreshold float64
}

// NewSelector 创建布局选择器
func NewSelector(catalog *Catalog, products *ProductCatalog, confidenceThreshold float64) *Selector {
	if confidenceThreshold <= 0 {
		confidenceThreshold = 0.85
	}
	return &Selector{
		catalog:             catalog,
		products:            products,
		confidenceThreshold: confidenceThreshold,
	}
}

// 菜谱意图的有序模式检查，先命中者生效
var (
	ingredientInventionPattern = regexp.MustCompile(`(?i)\b(what can i (make|do)|i have|use up|left ?over|in my (fridge|pantry|kitchen))\b`)
	singleRecipePattern        = regexp.MustCompile(`(?i)\b(how (to|do i) make|recipe for|a recipe)\b`)
	routinePattern             = regexp.MustCompile(`(?i)\b(routine|daily|every (day|morning|night)|habit|meal ?plan|week of)\b`)
	campaignPattern            = regexp.MustCompile(`(?i)\b(sale|deal|discount|holiday|gift|season(al)?|black friday|mother'?s day|father'?s day)\b`)
	brandPattern               = regexp.MustCompile(`(?i)\b(about (us|the company|vitamix)|history|founder|brand|who (is|are|makes))\b`)
)

// Select 第一遍布局选择
// 严格优先级：裸产品名覆盖 > 单产品降级比较布局 > 高置信采信分类器 > 规则兜底。
func (s *Selector) Select(query string, cls *entity.IntentClassification) Decision {
	d := s.decide(query, cls)
	metrics.LayoutDecisionTotal.WithLabelValues(string(d.Source), string(d.Template.ID)).Inc()
	return d
}

func (s *Selector) decide(query string, cls *entity.IntentClassification) Decision {
	if cls == nil {
		cls = entity.DefaultClassification()
	}

	// 1) 裸产品名查询覆盖一切，包括分类器自己的选择
	if name, ok := s.products.MatchBareProduct(query); ok {
		return Decision{
			Template:       s.catalog.MustGet(entity.LayoutProductDetail),
			Source:         DecisionOverride,
			MatchedProduct: name,
		}
	}

	// 2) 只有一个产品实体时不允许比较布局，单品无从比较
	if len(cls.Entities.Products) == 1 && s.isComparisonChoice(cls) {
		return Decision{
			Template: s.catalog.MustGet(entity.LayoutProductDetail),
			Source:   DecisionRule,
		}
	}

	// 3) 置信度达标且布局可解析时采信分类器
	if cls.Confidence >= s.confidenceThreshold {
		if tpl, ok := s.catalog.Get(entity.LayoutID(cls.LayoutID)); ok {
			return Decision{Template: tpl, Source: DecisionTrusted}
		}
	}

	// 4) 规则兜底
	return Decision{Template: s.ruleBased(query, cls), Source: DecisionRule}
}

func (s *Selector) isComparisonChoice(cls *entity.IntentClassification) bool {
	return cls.IntentType == entity.IntentComparison ||
		entity.LayoutID(cls.LayoutID) == entity.LayoutProductComparison
}

func (s *Selector) ruleBased(query string, cls *entity.IntentClassification) *entity.LayoutTemplate {
	text := patternText(query, cls)

	switch cls.IntentType {
	case entity.IntentSupport:
		return s.catalog.MustGet(entity.LayoutSupport)

	case entity.IntentComparison:
		return s.catalog.MustGet(entity.LayoutProductComparison)

	case entity.IntentProductInfo:
		switch len(cls.Entities.Products) {
		case 0:
			return s.catalog.MustGet(entity.LayoutCategoryBrowse)
		case 1:
			return s.catalog.MustGet(entity.LayoutProductDetail)
		default:
			return s.catalog.MustGet(entity.LayoutProductComparison)
		}

	case entity.IntentRecipe:
		// 模式优先级：手头食材发明 > 单个具名菜谱 > 习惯养成，均未命中走合集
		switch {
		case ingredientInventionPattern.MatchString(text):
			return s.catalog.MustGet(entity.LayoutIngredientWorkshop)
		case singleRecipePattern.MatchString(text):
			return s.catalog.MustGet(entity.LayoutSingleRecipe)
		case routinePattern.MatchString(text):
			return s.catalog.MustGet(entity.LayoutWellnessRoutine)
		default:
			return s.catalog.MustGet(entity.LayoutRecipeCollection)
		}

	case entity.IntentCampaign:
		return s.catalog.MustGet(entity.LayoutCampaign)

	case entity.IntentBrand:
		return s.catalog.MustGet(entity.LayoutBrandStory)
	}

	if campaignPattern.MatchString(text) {
		return s.catalog.MustGet(entity.LayoutCampaign)
	}
	if brandPattern.MatchString(text) {
		return s.catalog.MustGet(entity.LayoutBrandStory)
	}
	return s.catalog.MustGet(entity.LayoutLifestyle)
}

// patternText 模式检查同时作用于目标文本与原始查询
func patternText(query string, cls *entity.IntentClassification) string {
	parts := make([]string, 0, len(cls.Entities.Goals)+1)
	parts = append(parts, query)
	parts = append(parts, cls.Entities.Goals...)
	return strings.Join(parts, " ")
}
