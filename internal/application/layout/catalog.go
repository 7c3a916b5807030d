// Package layout 实现布局模板目录与两级布局选择
package layout

import (
	"pageweave-api/internal/domain/entity"
)

// Catalog 布局模板目录
// 进程启动时构建一次，运行期只读。
type Catalog struct {
	templates map[entity.LayoutID]*entity.LayoutTemplate
	order     []entity.LayoutID
}

// NewCatalog 构建完整的布局模板目录
func NewCatalog() *Catalog {
	c := &Catalog{templates: make(map[entity.LayoutID]*entity.LayoutTemplate)}
	for _, tpl := range buildTemplates() {
		c.templates[tpl.ID] = tpl
		c.order = append(c.order, tpl.ID)
	}
	return c
}

// Get 按 ID 查找模板
func (c *Catalog) Get(id entity.LayoutID) (*entity.LayoutTemplate, bool) {
	tpl, ok := c.templates[id]
	return tpl, ok
}

// MustGet 查找必然存在的内置模板
func (c *Catalog) MustGet(id entity.LayoutID) *entity.LayoutTemplate {
	tpl, ok := c.templates[id]
	if !ok {
		panic("layout: unknown built-in template " + string(id))
	}
	return tpl
}

// IDs 返回目录中全部模板 ID（声明顺序）
func (c *Catalog) IDs() []entity.LayoutID {
	out := make([]entity.LayoutID, len(c.order))
	copy(out, c.order)
	return out
}

func slot(t entity.BlockType, width string) entity.BlockSlot {
	return entity.BlockSlot{Type: t, Width: width}
}

func variantSlot(t entity.BlockType, variant, width string) entity.BlockSlot {
	return entity.BlockSlot{Type: t, Variant: variant, Width: width}
}

func buildTemplates() []*entity.LayoutTemplate {
	return []*entity.LayoutTemplate{
		{
			ID: entity.LayoutProductDetail,
			Sections: []entity.LayoutSection{
				{Style: "dark", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "product", "full"),
				}},
				{Style: "light", Blocks: []entity.BlockSlot{
					slot(entity.BlockSplitContent, "wide"),
					variantSlot(entity.BlockCards, "features", "wide"),
				}},
				{Style: "default", Blocks: []entity.BlockSlot{
					slot(entity.BlockFAQ, "narrow"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutProductComparison,
			Sections: []entity.LayoutSection{
				{Style: "dark", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "comparison", "full"),
				}},
				{Style: "light", Blocks: []entity.BlockSlot{
					slot(entity.BlockComparisonTable, "wide"),
					slot(entity.BlockProductCards, "wide"),
				}},
				{Style: "default", Blocks: []entity.BlockSlot{
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutCategoryBrowse,
			Sections: []entity.LayoutSection{
				{Style: "light", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "category", "full"),
					slot(entity.BlockProductCards, "wide"),
				}},
				{Style: "default", Blocks: []entity.BlockSlot{
					slot(entity.BlockColumns, "wide"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutSingleRecipe,
			Sections: []entity.LayoutSection{
				{Style: "light", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "recipe", "full"),
					slot(entity.BlockRecipeDetail, "wide"),
				}},
				{Style: "accent", Blocks: []entity.BlockSlot{
					slot(entity.BlockTechnique, "wide"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutRecipeCollection,
			Sections: []entity.LayoutSection{
				{Style: "light", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "collection", "full"),
					slot(entity.BlockRecipeCards, "wide"),
				}},
				{Style: "accent", Blocks: []entity.BlockSlot{
					slot(entity.BlockTechnique, "wide"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutIngredientWorkshop,
			Sections: []entity.LayoutSection{
				{Style: "light", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "workshop", "full"),
					slot(entity.BlockColumns, "wide"),
				}},
				{Style: "default", Blocks: []entity.BlockSlot{
					slot(entity.BlockRecipeCards, "wide"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutWellnessRoutine,
			Sections: []entity.LayoutSection{
				{Style: "light", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "wellness", "full"),
					slot(entity.BlockSplitContent, "wide"),
				}},
				{Style: "default", Blocks: []entity.BlockSlot{
					slot(entity.BlockRecipeCards, "wide"),
					slot(entity.BlockFAQ, "narrow"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutSupport,
			Sections: []entity.LayoutSection{
				{Style: "default", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "support", "full"),
					slot(entity.BlockFAQ, "narrow"),
				}},
				{Style: "light", Blocks: []entity.BlockSlot{
					slot(entity.BlockText, "narrow"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutEducational,
			Sections: []entity.LayoutSection{
				{Style: "light", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "article", "full"),
					slot(entity.BlockText, "narrow"),
				}},
				{Style: "default", Blocks: []entity.BlockSlot{
					slot(entity.BlockColumns, "wide"),
					slot(entity.BlockFAQ, "narrow"),
				}},
			},
		},
		{
			ID: entity.LayoutLifestyle,
			Sections: []entity.LayoutSection{
				{Style: "light", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "lifestyle", "full"),
					slot(entity.BlockCards, "wide"),
				}},
				{Style: "default", Blocks: []entity.BlockSlot{
					slot(entity.BlockSplitContent, "wide"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutCampaign,
			Sections: []entity.LayoutSection{
				{Style: "dark", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "campaign", "full"),
				}},
				{Style: "accent", Blocks: []entity.BlockSlot{
					slot(entity.BlockProductCards, "wide"),
					slot(entity.BlockSplitContent, "wide"),
					slot(entity.BlockCTA, "wide"),
				}},
			},
		},
		{
			ID: entity.LayoutBrandStory,
			Sections: []entity.LayoutSection{
				{Style: "dark", Blocks: []entity.BlockSlot{
					variantSlot(entity.BlockHero, "brand", "full"),
				}},
				{Style: "light", Blocks: []entity.BlockSlot{
					slot(entity.BlockSplitContent, "wide"),
					slot(entity.BlockColumns, "wide"),
					slot(entity.BlockText, "narrow"),
				}},
			},
		},
	}
}
