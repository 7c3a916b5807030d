// Package imagegen 提供图片生成 Provider 与容错路由实现
package imagegen

import (
	"context"
)

// Provider 单个图片生成后端
type Provider interface {
	// Name 返回 Provider 标识，用于指标与日志
	Name() string

	// Generate 根据提示词生成一张图片，返回 PNG 字节
	Generate(ctx context.Context, prompt, size string) ([]byte, error)
}
