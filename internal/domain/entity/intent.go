// Package entity 定义领域实体
package entity

// IntentType 意图类型
type IntentType string

const (
	IntentProductInfo IntentType = "product_info"
	IntentComparison  IntentType = "comparison"
	IntentRecipe      IntentType = "recipe"
	IntentSupport     IntentType = "support"
	IntentCampaign    IntentType = "campaign"
	IntentBrand       IntentType = "brand"
	IntentGeneral     IntentType = "general"
)

// IntentEntities 分类器抽取的实体集合
type IntentEntities struct {
	Products    []string `json:"products,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Goals       []string `json:"goals,omitempty"`
	UserContext string   `json:"user_context,omitempty"`
}

// IntentClassification 意图分类结果
// 每次请求由分类器产出一次，之后不可变。
type IntentClassification struct {
	IntentType   IntentType     `json:"intent_type"`
	Confidence   float64        `json:"confidence"`
	LayoutID     string         `json:"layout_id"`
	ContentTypes []string       `json:"content_types,omitempty"`
	Entities     IntentEntities `json:"entities"`
}

// DefaultClassification 分类器输出无法解析时的兜底分类
// 低置信度保证布局选择一定走规则分支。
func DefaultClassification() *IntentClassification {
	return &IntentClassification{
		IntentType: IntentGeneral,
		Confidence: 0.3,
		LayoutID:   string(LayoutLifestyle),
	}
}

// HasContentType 检查分类结果是否包含某内容类型
func (c *IntentClassification) HasContentType(ct string) bool {
	for _, t := range c.ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}
