// Package wire 提供依赖注入配置
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"pageweave-api/internal/application/layout"
	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/repository"
	infraembedding "pageweave-api/internal/infrastructure/embedding"
	"pageweave-api/internal/infrastructure/imagegen"
	"pageweave-api/internal/infrastructure/messaging"
	"pageweave-api/internal/infrastructure/persistence/milvus"
	"pageweave-api/internal/infrastructure/persistence/postgres"
	"pageweave-api/internal/infrastructure/persistence/redis"
	"pageweave-api/internal/interfaces/http/router"
	"pageweave-api/pkg/logger"
)

// App 组装完成的应用
type App struct {
	Router   *router.Router
	Postgres *postgres.Client
}

// ProvideLLMConfig 提供 LLM 配置切片
func ProvideLLMConfig(cfg *config.Config) *config.LLMConfig {
	return &cfg.LLM
}

// ProvideRetrievalConfig 提供检索配置切片
func ProvideRetrievalConfig(cfg *config.Config) *config.RetrievalConfig {
	return &cfg.Retrieval
}

// ProvideGenerationConfig 提供生成配置切片
func ProvideGenerationConfig(cfg *config.Config) *config.GenerationConfig {
	return &cfg.Generation
}

// ProvideFeaturesConfig 提供功能开关配置
func ProvideFeaturesConfig(cfg *config.Config) config.FeaturesConfig {
	return cfg.Features
}

// ProvideComplianceFeature 提供合规检查开关
func ProvideComplianceFeature(cfg *config.Config) config.ComplianceFeature {
	return cfg.Features.Compliance
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideSessionStore 提供会话存储
func ProvideSessionStore(client *redis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client, 0)
}

// ProvideStateStore 提供生成状态存储
func ProvideStateStore(client *redis.Client, cfg *config.Config) *redis.StateStore {
	return redis.NewStateStore(client, cfg.Generation.StateTTL)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideMilvusClientOptional 提供可选的 Milvus 客户端
// 不可达时返回 nil，检索引擎据此降级为空结果。
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, retrieval disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideChunkRepositoryOptional 提供可选的向量片段仓储
func ProvideChunkRepositoryOptional(client *milvus.Client) repository.ChunkRepository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client)
}

// ProvideEmbedderOptional 提供可选的 Embedder
func ProvideEmbedderOptional(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, retrieval disabled", "error", err.Error())
		return nil, nil
	}
	return embedder, nil
}

// ProvideSelector 提供版式选择器
func ProvideSelector(catalog *layout.Catalog, products *layout.ProductCatalog, cfg *config.Config) *layout.Selector {
	return layout.NewSelector(catalog, products, cfg.Generation.ConfidenceThreshold)
}

// ProvideImageRouter 提供图片生成路由
func ProvideImageRouter(ctx context.Context, cfg *config.Config) *imagegen.Router {
	providers := imagegen.BuildProviders(ctx, &cfg.Image)
	return imagegen.NewRouter(providers, cfg.Generation.ImageOutputDir, cfg.Generation.ImageConcurrency)
}
