package repository

import (
	"context"

	"pageweave-api/internal/domain/entity"
)

// PageRepository 已发布页面仓储接口
type PageRepository interface {
	// Upsert 按 slug 创建或覆盖页面
	Upsert(ctx context.Context, page *entity.Page) error

	// GetBySlug 根据 slug 获取页面
	GetBySlug(ctx context.Context, slug string) (*entity.Page, error)

	// List 按发布时间倒序列出页面
	List(ctx context.Context, limit, offset int) ([]*entity.Page, int64, error)
}
