package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/domain/entity"
)

func turn(query string, intent entity.IntentType, entities entity.IntentEntities) entity.SessionTurn {
	return entity.SessionTurn{Query: query, Intent: intent, Entities: entities}
}

func TestMergeEmptySession(t *testing.T) {
	m := NewMerger()

	merged := m.Merge(&entity.SessionContext{}, "best blender for smoothies")
	require.NotNil(t, merged)
	assert.True(t, merged.Empty())

	merged = m.Merge(nil, "best blender for smoothies")
	assert.True(t, merged.Empty())
}

func TestMergeCumulativeUnion(t *testing.T) {
	m := NewMerger()
	sc := &entity.SessionContext{Turns: []entity.SessionTurn{
		turn("smoothie recipes", entity.IntentRecipe, entity.IntentEntities{
			Ingredients: []string{"mango", "banana"},
			Goals:       []string{"tropical smoothies"},
		}),
		turn("what about the a3500", entity.IntentProductInfo, entity.IntentEntities{
			Products: []string{"a3500"},
			Goals:    []string{"easy cleanup"},
		}),
	}}

	merged := m.Merge(sc, "show me more")
	assert.Equal(t, []string{"a3500"}, merged.Products)
	assert.Equal(t, []string{"mango", "banana"}, merged.Ingredients)
	assert.Contains(t, merged.Goals, "tropical smoothies")
	assert.Contains(t, merged.Goals, "easy cleanup")
	assert.NotEmpty(t, merged.ContextText)
}

// 重复轮次不丢失信息：后一次合并的目标集合是前一次的超集。
func TestMergeMonotonicAcrossTurns(t *testing.T) {
	m := NewMerger()
	turns := []entity.SessionTurn{
		turn("smoothies", entity.IntentRecipe, entity.IntentEntities{Goals: []string{"smoothies"}}),
		turn("soups too", entity.IntentRecipe, entity.IntentEntities{Goals: []string{"hot soups"}}),
		turn("and nut butter", entity.IntentRecipe, entity.IntentEntities{Goals: []string{"nut butter"}}),
	}

	var prev []string
	for i := 1; i <= len(turns); i++ {
		merged := m.Merge(&entity.SessionContext{Turns: turns[:i]}, "keep going")
		for _, g := range prev {
			assert.Contains(t, merged.Goals, g)
		}
		prev = merged.Goals
	}
}

func TestMergeResetSignal(t *testing.T) {
	m := NewMerger()
	sc := &entity.SessionContext{Turns: []entity.SessionTurn{
		turn("smoothie recipes", entity.IntentRecipe, entity.IntentEntities{
			Ingredients: []string{"mango"},
			Goals:       []string{"vegan smoothies"},
		}),
	}}

	for _, q := range []string{
		"actually show me blenders",
		"forget all that",
		"let's try something different",
		"start over please",
		"never mind, blenders",
	} {
		merged := m.Merge(sc, q)
		assert.True(t, merged.Empty(), "query %q should reset context", q)
	}

	// 话题切换本身不是重置信号
	merged := m.Merge(sc, "which blender should I buy?")
	assert.False(t, merged.Empty())
}

// 重置短语按词边界匹配，包含其子串的普通单词不触发重置。
func TestMergeResetSignalWordBoundary(t *testing.T) {
	m := NewMerger()
	sc := &entity.SessionContext{Turns: []entity.SessionTurn{
		turn("tropical smoothie ideas", entity.IntentRecipe, entity.IntentEntities{
			Ingredients: []string{"mango"},
			Goals:       []string{"tropical smoothies"},
		}),
	}}

	for _, q := range []string{
		"give me unforgettable smoothie ideas",
		"tell me factually which blender is best",
		"overnight starter recipes",
	} {
		merged := m.Merge(sc, q)
		assert.False(t, merged.Empty(), "query %q must not reset context", q)
		assert.Contains(t, merged.Goals, "tropical smoothies")
	}

	assert.True(t, m.HasResetSignal("ACTUALLY, show me soups"))
	assert.False(t, m.HasResetSignal("factual overview"))
}

func TestMergeConstraintsPersist(t *testing.T) {
	m := NewMerger()
	sc := &entity.SessionContext{Turns: []entity.SessionTurn{
		turn("vegan smoothie ideas", entity.IntentRecipe, entity.IntentEntities{
			Goals: []string{"vegan smoothies"},
		}),
		turn("what blenders are there", entity.IntentProductInfo, entity.IntentEntities{
			Goals: []string{"quiet blender"},
		}),
	}}

	merged := m.Merge(sc, "compare the top two")
	assert.Contains(t, merged.Constraints, "vegan smoothies")
}

// 跨意图合并：菜谱轮次之后问产品，融合目标需同时引用两侧主题。
func TestMergeCrossIntentBlendedGoal(t *testing.T) {
	m := NewMerger()
	sc := &entity.SessionContext{Turns: []entity.SessionTurn{
		turn("recipes with tropical fruits and smoothies", entity.IntentRecipe, entity.IntentEntities{
			Ingredients: []string{"tropical fruits"},
			Goals:       []string{"smoothies"},
		}),
	}}

	merged := m.Merge(sc, "what is the best blender for me?")

	var blended string
	for _, g := range merged.Goals {
		if g != "smoothies" {
			blended = g
		}
	}
	require.NotEmpty(t, blended, "expected a synthesized blended goal")
	assert.Contains(t, blended, "blender")
	assert.Regexp(t, "tropical|smoothie", blended)
}

func TestMergeDeduplicatesCaseInsensitive(t *testing.T) {
	m := NewMerger()
	sc := &entity.SessionContext{Turns: []entity.SessionTurn{
		turn("a3500?", entity.IntentProductInfo, entity.IntentEntities{Products: []string{"A3500"}}),
		turn("more on a3500", entity.IntentProductInfo, entity.IntentEntities{Products: []string{"a3500"}}),
	}}

	merged := m.Merge(sc, "tell me more")
	assert.Len(t, merged.Products, 1)
}
