package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
)

var stateTracer = otel.Tracer("redis.genstate")

// StateStore 基于 Redis 的页面生成状态存储。
// Acquire 通过 SET NX 保证同一路径同一时刻最多一次生成在运行。
type StateStore struct {
	client *Client
	ttl    time.Duration
}

// NewStateStore 创建生成状态存储
func NewStateStore(client *Client, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &StateStore{client: client, ttl: ttl}
}

var _ repository.StateRepository = (*StateStore)(nil)

func stateKey(siteID, path string) string {
	return fmt.Sprintf("genstate:%s:%s", siteID, path)
}

// Acquire 以原子方式写入 pending 状态；路径已有未完成状态时返回 false
func (s *StateStore) Acquire(ctx context.Context, siteID string, state *entity.GenerationState) (bool, error) {
	ctx, span := stateTracer.Start(ctx, "genstate.Acquire",
		trace.WithAttributes(attribute.String("genstate.path", state.Path)))
	defer span.End()

	bytes, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to marshal generation state: %w", err)
	}

	ok, err := s.client.rdb.SetNX(ctx, stateKey(siteID, state.Path), bytes, s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to acquire generation state: %w", err)
	}
	if ok {
		span.SetAttributes(attribute.Bool("genstate.acquired", true))
		return true, nil
	}

	// 已存在的终态记录允许被新一轮生成覆盖
	existing, err := s.Get(ctx, siteID, state.Path)
	if err != nil {
		return false, err
	}
	if existing == nil || existing.Status == entity.GenerationComplete || existing.Status == entity.GenerationFailed {
		if err := s.Update(ctx, siteID, state); err != nil {
			return false, err
		}
		span.SetAttributes(attribute.Bool("genstate.acquired", true))
		return true, nil
	}

	span.SetAttributes(attribute.Bool("genstate.acquired", false))
	return false, nil
}

// Get 获取指定路径的生成状态；不存在时返回 nil
func (s *StateStore) Get(ctx context.Context, siteID, path string) (*entity.GenerationState, error) {
	ctx, span := stateTracer.Start(ctx, "genstate.Get",
		trace.WithAttributes(attribute.String("genstate.path", path)))
	defer span.End()

	val, err := s.client.rdb.Get(ctx, stateKey(siteID, path)).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get generation state: %w", err)
	}

	var state entity.GenerationState
	if err := json.Unmarshal(val, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal generation state: %w", err)
	}
	return &state, nil
}

// Update 覆盖写入状态并刷新 TTL
func (s *StateStore) Update(ctx context.Context, siteID string, state *entity.GenerationState) error {
	ctx, span := stateTracer.Start(ctx, "genstate.Update",
		trace.WithAttributes(
			attribute.String("genstate.path", state.Path),
			attribute.String("genstate.status", string(state.Status)),
		))
	defer span.End()

	bytes, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal generation state: %w", err)
	}
	if err := s.client.rdb.Set(ctx, stateKey(siteID, state.Path), bytes, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update generation state: %w", err)
	}
	return nil
}

// Release 删除状态记录，允许同路径重新生成
func (s *StateStore) Release(ctx context.Context, siteID, path string) error {
	ctx, span := stateTracer.Start(ctx, "genstate.Release",
		trace.WithAttributes(attribute.String("genstate.path", path)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, stateKey(siteID, path)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to release generation state: %w", err)
	}
	return nil
}
