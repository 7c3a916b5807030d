package repository

import (
	"context"

	"pageweave-api/internal/domain/entity"
)

// StateRepository 页面生成状态仓储接口。
// Acquire 是整条流水线互斥的关键：同一路径同一时刻最多一次生成。
type StateRepository interface {
	// Acquire 以原子方式写入 pending 状态；路径已有未完成状态时返回 false
	Acquire(ctx context.Context, siteID string, state *entity.GenerationState) (bool, error)

	// Get 获取指定路径的生成状态；不存在时返回 nil
	Get(ctx context.Context, siteID, path string) (*entity.GenerationState, error)

	// Update 覆盖写入状态（保持原有 TTL 语义，由实现决定）
	Update(ctx context.Context, siteID string, state *entity.GenerationState) error

	// Release 删除状态记录，允许同路径重新生成
	Release(ctx context.Context, siteID, path string) error
}
