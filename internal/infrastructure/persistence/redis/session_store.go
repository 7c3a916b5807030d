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

var sessionTracer = otel.Tracer("redis.session")

// 会话只保留最近若干轮，防止上下文无限膨胀。
const maxSessionTurns = 20

// SessionStore 基于 Redis 的会话上下文存储
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{client: client, ttl: ttl}
}

var _ repository.SessionRepository = (*SessionStore)(nil)

func sessionKey(siteID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", siteID, sessionID)
}

// Get 获取会话上下文；不存在时返回空会话
func (s *SessionStore) Get(ctx context.Context, siteID, sessionID string) (*entity.SessionContext, error) {
	ctx, span := sessionTracer.Start(ctx, "session.Get",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	val, err := s.client.rdb.Get(ctx, sessionKey(siteID, sessionID)).Bytes()
	if err != nil {
		if IsNil(err) {
			return &entity.SessionContext{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sc entity.SessionContext
	if err := json.Unmarshal(val, &sc); err != nil {
		// 损坏的会话按空会话处理，下一次写入会覆盖
		span.RecordError(err)
		return &entity.SessionContext{}, nil
	}
	span.SetAttributes(attribute.Int("session.turns", len(sc.Turns)))
	return &sc, nil
}

// Append 在会话尾部追加一轮记录并刷新 TTL
func (s *SessionStore) Append(ctx context.Context, siteID, sessionID string, turn entity.SessionTurn) error {
	ctx, span := sessionTracer.Start(ctx, "session.Append",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	sc, err := s.Get(ctx, siteID, sessionID)
	if err != nil {
		return err
	}

	sc.Turns = append(sc.Turns, turn)
	if len(sc.Turns) > maxSessionTurns {
		sc.Turns = sc.Turns[len(sc.Turns)-maxSessionTurns:]
	}

	bytes, err := json.Marshal(sc)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.rdb.Set(ctx, sessionKey(siteID, sessionID), bytes, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Reset 清空会话上下文
func (s *SessionStore) Reset(ctx context.Context, siteID, sessionID string) error {
	ctx, span := sessionTracer.Start(ctx, "session.Reset",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, sessionKey(siteID, sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to reset session: %w", err)
	}
	return nil
}
