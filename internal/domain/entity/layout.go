package entity

import (
	"fmt"
)

// LayoutID 布局模板标识
type LayoutID string

const (
	LayoutProductDetail      LayoutID = "product-detail"
	LayoutProductComparison  LayoutID = "product-comparison"
	LayoutCategoryBrowse     LayoutID = "category-browse"
	LayoutSingleRecipe       LayoutID = "single-recipe"
	LayoutRecipeCollection   LayoutID = "recipe-collection"
	LayoutIngredientWorkshop LayoutID = "ingredient-workshop"
	LayoutWellnessRoutine    LayoutID = "wellness-routine"
	LayoutSupport            LayoutID = "support"
	LayoutEducational        LayoutID = "educational"
	LayoutLifestyle          LayoutID = "lifestyle"
	LayoutCampaign           LayoutID = "campaign"
	LayoutBrandStory         LayoutID = "brand-story"
)

// BlockType 内容块类型
type BlockType string

const (
	BlockHero            BlockType = "hero"
	BlockCards           BlockType = "cards"
	BlockProductCards    BlockType = "product-cards"
	BlockComparisonTable BlockType = "comparison-table"
	BlockColumns         BlockType = "columns"
	BlockSplitContent    BlockType = "split-content"
	BlockRecipeDetail    BlockType = "recipe-detail"
	BlockRecipeCards     BlockType = "recipe-cards"
	BlockTechnique       BlockType = "technique"
	BlockFAQ             BlockType = "faq"
	BlockCTA             BlockType = "cta"
	BlockText            BlockType = "text"
)

// BlockSlot 模板中等待填充内容的位置
type BlockSlot struct {
	Type    BlockType         `json:"type"`
	Variant string            `json:"variant,omitempty"`
	Width   string            `json:"width"`
	Config  map[string]string `json:"config,omitempty"`
}

// LayoutSection 模板分区
type LayoutSection struct {
	Style  string      `json:"style,omitempty"`
	Blocks []BlockSlot `json:"blocks"`
}

// LayoutTemplate 静态布局模板目录项，运行期只读
type LayoutTemplate struct {
	ID       LayoutID        `json:"id"`
	Sections []LayoutSection `json:"sections"`
}

// FlattenSlots 按分区顺序展开所有块位
// 生成内容的块序与该展开序按位置对齐。
func (t *LayoutTemplate) FlattenSlots() []BlockSlot {
	var slots []BlockSlot
	for _, sec := range t.Sections {
		slots = append(slots, sec.Blocks...)
	}
	return slots
}

// SectionStyleFor 返回展开序中第 i 个块位所属分区的样式
func (t *LayoutTemplate) SectionStyleFor(index int) string {
	offset := 0
	for _, sec := range t.Sections {
		if index < offset+len(sec.Blocks) {
			return sec.Style
		}
		offset += len(sec.Blocks)
	}
	return ""
}

// BlockTypes 展开后的块类型序列，用于布局预览事件
func (t *LayoutTemplate) BlockTypes() []BlockType {
	slots := t.FlattenSlots()
	types := make([]BlockType, 0, len(slots))
	for _, s := range slots {
		types = append(types, s.Type)
	}
	return types
}

// SlotBinding 块位与内容块的显式绑定
// SectionStyle 取自模板分区，绑定时一次算好，下游不再回写内容块。
type SlotBinding struct {
	SlotIndex    int
	Slot         BlockSlot
	SectionStyle string
	Block        *ContentBlock
}

// SlotMapping 展开块位到内容块的有序映射
type SlotMapping struct {
	Bindings []SlotBinding
}

// BuildSlotMapping 按位置对齐生成内容与模板块位，并校验兼容性
// 长度或类型不匹配视为生成器违反约定，快速失败而不是错位渲染。
func BuildSlotMapping(tpl *LayoutTemplate, content *GeneratedContent) (*SlotMapping, error) {
	if tpl == nil {
		return nil, fmt.Errorf("layout template is nil")
	}
	if content == nil {
		return nil, fmt.Errorf("generated content is nil")
	}

	slots := tpl.FlattenSlots()
	if len(content.Blocks) != len(slots) {
		return nil, fmt.Errorf("block count %d does not match slot count %d for layout %s",
			len(content.Blocks), len(slots), tpl.ID)
	}

	mapping := &SlotMapping{Bindings: make([]SlotBinding, 0, len(slots))}
	for i := range slots {
		block := &content.Blocks[i]
		if block.Type != slots[i].Type {
			return nil, fmt.Errorf("slot %d expects block type %s, generator produced %s",
				i, slots[i].Type, block.Type)
		}
		mapping.Bindings = append(mapping.Bindings, SlotBinding{
			SlotIndex:    i,
			Slot:         slots[i],
			SectionStyle: tpl.SectionStyleFor(i),
			Block:        block,
		})
	}
	return mapping, nil
}
