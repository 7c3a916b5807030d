package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate() *LayoutTemplate {
	return &LayoutTemplate{
		ID: LayoutSingleRecipe,
		Sections: []LayoutSection{
			{Style: "light", Blocks: []BlockSlot{
				{Type: BlockHero, Variant: "recipe", Width: "full"},
				{Type: BlockRecipeDetail, Width: "wide"},
			}},
			{Style: "accent", Blocks: []BlockSlot{
				{Type: BlockCTA, Width: "narrow"},
			}},
		},
	}
}

func testContent(types ...BlockType) *GeneratedContent {
	blocks := make([]ContentBlock, 0, len(types))
	for i, t := range types {
		blocks = append(blocks, ContentBlock{
			ID:      "b" + string(rune('1'+i)),
			Type:    t,
			Content: json.RawMessage(`{}`),
		})
	}
	return &GeneratedContent{Headline: "headline", Blocks: blocks}
}

func TestFlattenSlotsKeepsSectionOrder(t *testing.T) {
	tpl := testTemplate()

	slots := tpl.FlattenSlots()
	require.Len(t, slots, 3)
	assert.Equal(t, BlockHero, slots[0].Type)
	assert.Equal(t, BlockRecipeDetail, slots[1].Type)
	assert.Equal(t, BlockCTA, slots[2].Type)
}

func TestSectionStyleFor(t *testing.T) {
	tpl := testTemplate()

	assert.Equal(t, "light", tpl.SectionStyleFor(0))
	assert.Equal(t, "light", tpl.SectionStyleFor(1))
	assert.Equal(t, "accent", tpl.SectionStyleFor(2))
	// 越界索引返回空样式
	assert.Equal(t, "", tpl.SectionStyleFor(3))
}

func TestBuildSlotMappingAlignsByPosition(t *testing.T) {
	tpl := testTemplate()
	content := testContent(BlockHero, BlockRecipeDetail, BlockCTA)

	mapping, err := BuildSlotMapping(tpl, content)
	require.NoError(t, err)
	require.Len(t, mapping.Bindings, 3)

	for i, binding := range mapping.Bindings {
		assert.Equal(t, i, binding.SlotIndex)
		assert.Equal(t, binding.Slot.Type, binding.Block.Type)
		assert.Same(t, &content.Blocks[i], binding.Block)
	}

	// 分区样式绑定在映射上，内容块本身保持生成器给出的原样
	assert.Equal(t, "light", mapping.Bindings[0].SectionStyle)
	assert.Equal(t, "accent", mapping.Bindings[2].SectionStyle)
	for _, block := range content.Blocks {
		assert.Empty(t, block.SectionStyle)
	}
}

func TestBuildSlotMappingCountMismatch(t *testing.T) {
	tpl := testTemplate()
	content := testContent(BlockHero, BlockRecipeDetail)

	_, err := BuildSlotMapping(tpl, content)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block count")
}

func TestBuildSlotMappingTypeMismatch(t *testing.T) {
	tpl := testTemplate()
	// 数量正确但第二个块类型错位
	content := testContent(BlockHero, BlockText, BlockCTA)

	_, err := BuildSlotMapping(tpl, content)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot 1")
}

func TestBuildSlotMappingNilInputs(t *testing.T) {
	_, err := BuildSlotMapping(nil, testContent(BlockHero))
	assert.Error(t, err)

	_, err = BuildSlotMapping(testTemplate(), nil)
	assert.Error(t, err)
}

func TestGeneratedContentValidate(t *testing.T) {
	valid := testContent(BlockHero, BlockText)
	assert.NoError(t, valid.Validate())

	noHeadline := testContent(BlockHero)
	noHeadline.Headline = "  "
	assert.Error(t, noHeadline.Validate())

	empty := &GeneratedContent{Headline: "h"}
	assert.Error(t, empty.Validate())

	dupID := testContent(BlockHero, BlockText)
	dupID.Blocks[1].ID = dupID.Blocks[0].ID
	assert.Error(t, dupID.Validate())

	noPayload := testContent(BlockHero)
	noPayload.Blocks[0].Content = nil
	assert.Error(t, noPayload.Validate())
}
