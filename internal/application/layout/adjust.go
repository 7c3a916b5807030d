package layout

import (
	"context"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/pkg/logger"
	"pageweave-api/pkg/metrics"
)

// Adjust 检索完成后的第二遍布局修正
// 分类阶段的布局猜测发生在拿到上下文之前，这里按真实内容可得性修正，
// 返回新的决策而不是原地修改。裸产品名覆盖的单品选择不被改写。
func (s *Selector) Adjust(ctx context.Context, d Decision, retrieval *entity.RetrievalResult) Decision {
	if retrieval == nil {
		retrieval = entity.EmptyRetrievalResult()
	}

	target := s.adjustTarget(d, retrieval)
	if target == "" || target == d.Template.ID {
		return d
	}

	logger.Info(ctx, "layout adjusted after retrieval",
		"from", string(d.Template.ID),
		"to", string(target),
		"chunks", len(retrieval.Chunks),
	)
	metrics.LayoutAdjustedTotal.WithLabelValues(string(d.Template.ID), string(target)).Inc()

	adjusted := d
	adjusted.Template = s.catalog.MustGet(target)
	return adjusted
}

func (s *Selector) adjustTarget(d Decision, retrieval *entity.RetrievalResult) entity.LayoutID {
	productChunks := countChunks(retrieval, entity.ChunkContentProduct)

	switch d.Template.ID {
	case entity.LayoutSingleRecipe:
		if !retrieval.HasRecipes {
			return entity.LayoutEducational
		}

	case entity.LayoutRecipeCollection:
		if !retrieval.HasRecipes {
			return entity.LayoutLifestyle
		}

	case entity.LayoutProductDetail:
		// 裸产品名命中的单品选择不动，即使检索出多个产品
		if d.Source == DecisionOverride {
			return ""
		}
		if productChunks == 0 {
			return entity.LayoutCategoryBrowse
		}
		if productChunks > 1 {
			return entity.LayoutProductComparison
		}

	case entity.LayoutCategoryBrowse:
		if productChunks == 1 {
			return entity.LayoutProductDetail
		}
	}
	return ""
}

func countChunks(retrieval *entity.RetrievalResult, ct entity.ChunkContentType) int {
	n := 0
	for _, c := range retrieval.Chunks {
		if c.ContentType == ct {
			n++
		}
	}
	return n
}
