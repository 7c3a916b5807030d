package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
)

// PageRepository 已发布页面仓储实现
type PageRepository struct {
	client *Client
}

// NewPageRepository 创建页面仓储
func NewPageRepository(client *Client) *PageRepository {
	return &PageRepository{client: client}
}

var _ repository.PageRepository = (*PageRepository)(nil)

// Upsert 按 slug 创建或覆盖页面
func (r *PageRepository) Upsert(ctx context.Context, page *entity.Page) error {
	ctx, span := tracer.Start(ctx, "postgres.PageRepository.Upsert")
	span.SetAttributes(attribute.String("page.slug", page.Slug))
	defer span.End()

	err := r.client.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"path", "title", "query", "layout_id", "html",
				"block_count", "image_count", "status", "updated_at",
			}),
		}).
		Create(page).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

// GetBySlug 根据 slug 获取页面
func (r *PageRepository) GetBySlug(ctx context.Context, slug string) (*entity.Page, error) {
	ctx, span := tracer.Start(ctx, "postgres.PageRepository.GetBySlug")
	span.SetAttributes(attribute.String("page.slug", slug))
	defer span.End()

	var page entity.Page
	err := r.client.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &page, nil
}

// List 按发布时间倒序列出页面
func (r *PageRepository) List(ctx context.Context, limit, offset int) ([]*entity.Page, int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.PageRepository.List")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.client.db.WithContext(ctx).Model(&entity.Page{}).Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count pages: %w", err)
	}

	var pages []*entity.Page
	err := r.client.db.WithContext(ctx).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&pages).Error
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, total, nil
}
