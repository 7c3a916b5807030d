// Package page 实现页面生成的编排：从查询到完整页面的状态机
package page

import (
	"context"

	"pageweave-api/internal/application/compliance"
	"pageweave-api/internal/application/retrieval"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/infrastructure/messaging"
)

// Classifier 意图分类协作方
// 任何失败都必须降级为固定默认分类，不允许返回错误。
type Classifier interface {
	Classify(ctx context.Context, siteID, query string, merged *entity.MergedContext) *entity.IntentClassification
}

// EntityExtractor 确定性实体抽取协作方，与检索并行执行
type EntityExtractor interface {
	Extract(ctx context.Context, query string, merged *entity.MergedContext) *entity.IntentEntities
}

// ContextRetriever 上下文检索协作方，失败时降级为空结果
type ContextRetriever interface {
	Retrieve(ctx context.Context, siteID, query string) *retrieval.Result
}

// ContentGenerator 结构化内容生成协作方
// 无法产出合法结构化输出时必须返回可区分的错误，内容不允许静默兜底。
type ContentGenerator interface {
	Generate(ctx context.Context, in *GenerateContentInput) (*entity.GeneratedContent, error)
}

// GenerateContentInput 内容生成输入
type GenerateContentInput struct {
	SiteID    string
	Query     string
	Template  *entity.LayoutTemplate
	Merged    *entity.MergedContext
	Retrieval *entity.RetrievalResult
}

// BlockRenderer 块渲染协作方，纯函数
// 复用策略生效的块渲染既有素材地址，不得出现生成图片 ID。
type BlockRenderer interface {
	Render(ctx context.Context, binding entity.SlotBinding, pageSlug string, strategy entity.ImageStrategy) string
}

// ImageRequestBuilder 图片策略与请求构建协作方
type ImageRequestBuilder interface {
	DecideStrategy(block *entity.ContentBlock) entity.ImageStrategy
	BuildRequests(ctx context.Context, content *entity.GeneratedContent, strategies map[string]entity.ImageStrategy) []entity.ImageRequest
}

// ImageGenerator 图片生成协作方
// onReady 可能被多个工作协程并发调用，调用方的事件汇必须并发安全。
type ImageGenerator interface {
	GenerateBatch(ctx context.Context, pageSlug string, requests []entity.ImageRequest, onReady func(entity.GeneratedImage)) []entity.GeneratedImage
}

// ComplianceChecker 合规审查协作方，仅咨询性质
type ComplianceChecker interface {
	Check(ctx context.Context, siteID, query string, layoutID entity.LayoutID, pageText string) *compliance.Verdict
}

// LifecyclePublisher 页面生命周期消息发布协作方
type LifecyclePublisher interface {
	PublishPageGenerated(ctx context.Context, event *messaging.PageGeneratedMessage) (string, error)
}

// EventSink 进度事件汇
// Send 返回 false 表示消费端已关闭连接，编排器视为本次运行终止，
// 停止发射但不作为失败上报到状态记录。
type EventSink interface {
	Send(event entity.ProgressEvent) bool
}
