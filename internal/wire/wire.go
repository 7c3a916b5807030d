//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"pageweave-api/internal/application/compliance"
	"pageweave-api/internal/application/imaging"
	"pageweave-api/internal/application/intent"
	"pageweave-api/internal/application/layout"
	"pageweave-api/internal/application/page"
	"pageweave-api/internal/application/render"
	"pageweave-api/internal/application/retrieval"
	"pageweave-api/internal/application/session"
	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/repository"
	"pageweave-api/internal/infrastructure/imagegen"
	"pageweave-api/internal/infrastructure/llm"
	"pageweave-api/internal/infrastructure/messaging"
	"pageweave-api/internal/infrastructure/persistence/postgres"
	"pageweave-api/internal/infrastructure/persistence/redis"
	"pageweave-api/internal/interfaces/http/handler"
	"pageweave-api/internal/interfaces/http/middleware"
	"pageweave-api/internal/interfaces/http/router"
	"pageweave-api/internal/workflow/chain"
	workflowport "pageweave-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		ConfigSet,
		PostgresSet,
		RedisSet,
		MilvusSet,
		EmbeddingSet,
		RetrievalSet,
		WorkflowSet,
		PipelineSet,
		HandlerSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// ConfigSet 配置切片提供者集合
var ConfigSet = wire.NewSet(
	ProvideLLMConfig,
	ProvideRetrievalConfig,
	ProvideGenerationConfig,
	ProvideFeaturesConfig,
	ProvideComplianceFeature,
)

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewPageRepository,
	wire.Bind(new(repository.PageRepository), new(*postgres.PageRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvideSessionStore,
	ProvideStateStore,
	ProvideMessagingProducer,
	wire.Bind(new(repository.SessionRepository), new(*redis.SessionStore)),
	wire.Bind(new(repository.StateRepository), new(*redis.StateStore)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
	wire.Bind(new(page.LifecyclePublisher), new(*messaging.Producer)),
)

// MilvusSet 可选 Milvus（不可达时检索降级，不阻塞启动）
var MilvusSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideChunkRepositoryOptional,
)

// EmbeddingSet 可选 Embedder（不可用时禁用向量检索/索引）
var EmbeddingSet = wire.NewSet(
	ProvideEmbedderOptional,
)

// RetrievalSet 检索引擎与入库器
var RetrievalSet = wire.NewSet(
	retrieval.NewEngine,
	retrieval.NewIndexer,
	wire.Bind(new(page.ContextRetriever), new(*retrieval.Engine)),
)

// WorkflowSet LLM 工作流提供者集合
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewIntentChain,
	chain.NewContentChain,
	chain.NewComplianceChain,
)

// PipelineSet 页面生成流水线提供者集合
var PipelineSet = wire.NewSet(
	session.NewMerger,
	layout.NewCatalog,
	layout.NewProductCatalog,
	ProvideSelector,
	intent.NewClassifier,
	intent.NewExtractor,
	page.NewGenerator,
	imaging.NewBuilder,
	render.NewRenderer,
	ProvideImageRouter,
	compliance.NewChecker,
	page.NewOrchestrator,
	wire.Bind(new(page.Classifier), new(*intent.Classifier)),
	wire.Bind(new(page.EntityExtractor), new(*intent.Extractor)),
	wire.Bind(new(page.ContentGenerator), new(*page.Generator)),
	wire.Bind(new(page.ImageRequestBuilder), new(*imaging.Builder)),
	wire.Bind(new(page.BlockRenderer), new(*render.Renderer)),
	wire.Bind(new(page.ImageGenerator), new(*imagegen.Router)),
	wire.Bind(new(page.ComplianceChecker), new(*compliance.Checker)),
)

// HandlerSet HTTP 处理器与路由提供者集合
var HandlerSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewPageHandler,
	handler.NewRetrievalHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
