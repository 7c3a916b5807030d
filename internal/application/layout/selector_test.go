package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/domain/entity"
)

func newTestSelector(t *testing.T) *Selector {
	t.Helper()
	return NewSelector(NewCatalog(), NewProductCatalog(), 0.85)
}

func classification(intent entity.IntentType, confidence float64, layoutID entity.LayoutID, products ...string) *entity.IntentClassification {
	return &entity.IntentClassification{
		IntentType: intent,
		Confidence: confidence,
		LayoutID:   string(layoutID),
		Entities:   entity.IntentEntities{Products: products},
	}
}

func TestCatalogComplete(t *testing.T) {
	c := NewCatalog()
	require.Len(t, c.IDs(), 12)
	for _, id := range c.IDs() {
		tpl, ok := c.Get(id)
		require.True(t, ok)
		assert.NotEmpty(t, tpl.FlattenSlots(), "layout %s has no slots", id)
		for _, s := range tpl.FlattenSlots() {
			assert.NotEmpty(t, s.Type)
			assert.NotEmpty(t, s.Width)
		}
	}
}

func TestMatchBareProduct(t *testing.T) {
	p := NewProductCatalog()

	cases := []struct {
		query string
		want  string
		ok    bool
	}{
		{"a3500", "a3500", true},
		{"A3500", "a3500", true},
		{"the a3500", "a3500", true},
		{"vitamix a3500", "a3500", true},
		{"the vitamix a3500", "a3500", true},
		{"A3500?", "a3500", true},
		{"x2", "x2", true},
		{"5200", "5200", true},
		{"tell me about the a3500", "", false},
		{"a3500 vs a2500", "", false},
		{"a9999", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := p.MatchBareProduct(tc.query)
		assert.Equal(t, tc.ok, ok, "query %q", tc.query)
		assert.Equal(t, tc.want, got, "query %q", tc.query)
	}
}

// 裸产品名查询锁定单品详情，分类器给出任何结果都不改变这一点。
func TestSelectBareProductOverride(t *testing.T) {
	s := newTestSelector(t)

	cls := classification(entity.IntentComparison, 0.95, entity.LayoutProductComparison, "a3500", "a2500")
	for _, q := range []string{"a3500", "A3500", "the Vitamix A3500"} {
		d := s.Select(q, cls)
		assert.Equal(t, entity.LayoutProductDetail, d.Template.ID, "query %q", q)
		assert.Equal(t, DecisionOverride, d.Source)
		assert.Equal(t, "a3500", d.MatchedProduct)
	}
}

// 比较意图只带一个产品实体时，选择结果永远不是比较布局。
func TestSelectSingleProductDemotesComparison(t *testing.T) {
	s := newTestSelector(t)

	d := s.Select("compare the a3500", classification(entity.IntentComparison, 0.95, entity.LayoutProductComparison, "a3500"))
	assert.Equal(t, entity.LayoutProductDetail, d.Template.ID)
	assert.Equal(t, DecisionRule, d.Source)
}

func TestSelectTrustsHighConfidence(t *testing.T) {
	s := newTestSelector(t)

	d := s.Select("morning smoothie routine ideas", classification(entity.IntentRecipe, 0.9, entity.LayoutWellnessRoutine))
	assert.Equal(t, entity.LayoutWellnessRoutine, d.Template.ID)
	assert.Equal(t, DecisionTrusted, d.Source)

	// 布局无法解析时置信度再高也走规则
	d = s.Select("morning smoothie routine ideas", classification(entity.IntentRecipe, 0.9, "no-such-layout"))
	assert.Equal(t, DecisionRule, d.Source)
}

func TestSelectRuleBasedByIntent(t *testing.T) {
	s := newTestSelector(t)

	cases := []struct {
		name  string
		query string
		cls   *entity.IntentClassification
		want  entity.LayoutID
	}{
		{"support", "my blender won't turn on", classification(entity.IntentSupport, 0.5, ""), entity.LayoutSupport},
		{"comparison", "a3500 vs a2500", classification(entity.IntentComparison, 0.5, "", "a3500", "a2500"), entity.LayoutProductComparison},
		{"product zero entities", "which blenders exist", classification(entity.IntentProductInfo, 0.5, ""), entity.LayoutCategoryBrowse},
		{"product one entity", "tell me about the a3500", classification(entity.IntentProductInfo, 0.5, "", "a3500"), entity.LayoutProductDetail},
		{"campaign", "holiday gift ideas", classification(entity.IntentCampaign, 0.5, ""), entity.LayoutCampaign},
		{"brand", "the history of vitamix", classification(entity.IntentBrand, 0.5, ""), entity.LayoutBrandStory},
		{"general fallback", "healthy living tips", classification(entity.IntentGeneral, 0.5, ""), entity.LayoutLifestyle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := s.Select(tc.query, tc.cls)
			assert.Equal(t, tc.want, d.Template.ID)
			assert.Equal(t, DecisionRule, d.Source)
		})
	}
}

// 菜谱意图的模式优先级：食材发明 > 单个菜谱 > 习惯养成 > 合集兜底。
func TestSelectRecipePatternPriority(t *testing.T) {
	s := newTestSelector(t)
	cls := classification(entity.IntentRecipe, 0.5, "")

	cases := []struct {
		query string
		want  entity.LayoutID
	}{
		{"what can I make with mango and spinach", entity.LayoutIngredientWorkshop},
		{"I have kale and two bananas in my fridge", entity.LayoutIngredientWorkshop},
		{"how to make tomato soup", entity.LayoutSingleRecipe},
		{"recipe for green smoothie", entity.LayoutSingleRecipe},
		{"a daily smoothie routine", entity.LayoutWellnessRoutine},
		{"smoothie recipes", entity.LayoutRecipeCollection},
	}
	for _, tc := range cases {
		d := s.Select(tc.query, cls)
		assert.Equal(t, tc.want, d.Template.ID, "query %q", tc.query)
	}

	// 同时命中时食材发明优先于具名菜谱
	d := s.Select("how to make something with the ingredients I have", cls)
	assert.Equal(t, entity.LayoutIngredientWorkshop, d.Template.ID)
}

func TestSelectNilClassification(t *testing.T) {
	s := newTestSelector(t)
	d := s.Select("healthy living", nil)
	assert.Equal(t, entity.LayoutLifestyle, d.Template.ID)
	assert.Equal(t, DecisionRule, d.Source)
}
