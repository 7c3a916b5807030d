package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishPageGenerated 发布页面生成完成事件
func (p *Producer) PublishPageGenerated(ctx context.Context, event *PageGeneratedMessage) (string, error) {
	msg, err := NewMessage(event.Slug, "page_generated", event.SiteID, event)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("layout", event.LayoutID)
	if event.SessionID != "" {
		msg.SetMetadata("session_id", event.SessionID)
	}

	return p.Publish(ctx, StreamPageLifecycle, msg)
}

// PageGeneratedMessage 页面生成完成消息
type PageGeneratedMessage struct {
	SiteID     string `json:"site_id"`
	SessionID  string `json:"session_id,omitempty"`
	Slug       string `json:"slug"`
	Path       string `json:"path"`
	LayoutID   string `json:"layout_id"`
	Query      string `json:"query"`
	BlockCount int    `json:"block_count"`
	ImageCount int    `json:"image_count"`
	DurationMs int64  `json:"duration_ms"`
}
