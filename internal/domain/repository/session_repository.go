// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"pageweave-api/internal/domain/entity"
)

// SessionRepository 会话上下文仓储接口
type SessionRepository interface {
	// Get 获取会话上下文；不存在时返回空会话而非错误
	Get(ctx context.Context, siteID, sessionID string) (*entity.SessionContext, error)

	// Append 在会话尾部追加一轮记录
	Append(ctx context.Context, siteID, sessionID string, turn entity.SessionTurn) error

	// Reset 清空会话上下文
	Reset(ctx context.Context, siteID, sessionID string) error
}
