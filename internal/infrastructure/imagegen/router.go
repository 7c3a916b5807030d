package imagegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/pkg/logger"
	"pageweave-api/pkg/metrics"
)

var tracer = otel.Tracer("imagegen")

// Router 按配置的顺序尝试多个图片后端，全部失败时回落到占位图。
// 图片失败从不中断流水线，这是调用方可以依赖的约定。
type Router struct {
	providers   []Provider
	outputDir   string
	concurrency int
}

// NewRouter 创建图片生成路由
func NewRouter(providers []Provider, outputDir string, concurrency int) *Router {
	if concurrency <= 0 {
		concurrency = 4
	}
	if len(providers) == 0 {
		providers = []Provider{NewPlaceholderProvider()}
	}
	return &Router{
		providers:   providers,
		outputDir:   outputDir,
		concurrency: concurrency,
	}
}

// BuildProviders 根据配置组装后端链，末尾始终追加占位图后端
func BuildProviders(ctx context.Context, cfg *config.ImageConfig) []Provider {
	var providers []Provider

	chain := cfg.FallbackChain
	if len(chain) == 0 && cfg.DefaultProvider != "" {
		chain = []string{cfg.DefaultProvider}
	}

	for _, name := range chain {
		providerCfg, ok := cfg.Providers[name]
		if !ok && name != "placeholder" {
			logger.Warn(ctx, "image provider not configured, skipping", "provider", name)
			continue
		}
		switch name {
		case "openai":
			p, err := NewOpenAIProvider(providerCfg)
			if err != nil {
				logger.Warn(ctx, "failed to init image provider", "provider", name, "error", err.Error())
				continue
			}
			providers = append(providers, p)
		case "gemini":
			p, err := NewGeminiProvider(ctx, providerCfg)
			if err != nil {
				logger.Warn(ctx, "failed to init image provider", "provider", name, "error", err.Error())
				continue
			}
			providers = append(providers, p)
		case "placeholder":
			// 占位图统一在末尾追加
		default:
			logger.Warn(ctx, "unknown image provider", "provider", name)
		}
	}

	providers = append(providers, NewPlaceholderProvider())
	return providers
}

// GenerateBatch 并发生成一批图片。
// 每张图片生成成功后立即回调 onReady，完成顺序不保证与请求顺序一致。
// 返回的切片按完成顺序排列；方法本身不返回生成类错误。
func (r *Router) GenerateBatch(ctx context.Context, pageSlug string, requests []entity.ImageRequest, onReady func(entity.GeneratedImage)) []entity.GeneratedImage {
	if len(requests) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "imagegen.GenerateBatch",
		trace.WithAttributes(
			attribute.String("page.slug", pageSlug),
			attribute.Int("image.count", len(requests)),
		))
	defer span.End()

	results := make(chan entity.GeneratedImage, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, req := range requests {
		req := req
		g.Go(func() error {
			img := r.generateOne(gctx, pageSlug, req)
			results <- img
			if onReady != nil {
				onReady(img)
			}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	images := make([]entity.GeneratedImage, 0, len(requests))
	for img := range results {
		images = append(images, img)
	}
	return images
}

// generateOne 对单个请求逐个尝试后端。最后一个后端是占位图，不会失败。
func (r *Router) generateOne(ctx context.Context, pageSlug string, req entity.ImageRequest) entity.GeneratedImage {
	url := entity.ImageURL(pageSlug, req.ID)

	for _, p := range r.providers {
		start := time.Now()
		raw, err := p.Generate(ctx, req.Prompt, req.Size)
		metrics.ImageGenerationDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ImageGenerationTotal.WithLabelValues(p.Name(), "error").Inc()
			logger.Warn(ctx, "image provider failed, trying next",
				"provider", p.Name(),
				"image_id", req.ID,
				"error", err.Error(),
			)
			continue
		}
		metrics.ImageGenerationTotal.WithLabelValues(p.Name(), "success").Inc()

		if err := r.store(pageSlug, req.ID, raw); err != nil {
			logger.Error(ctx, "failed to store generated image", err, "image_id", req.ID)
		}
		return entity.GeneratedImage{ID: req.ID, URL: url}
	}

	// providers 链末尾固定是占位图，理论上到不了这里
	return entity.GeneratedImage{ID: req.ID, URL: url}
}

func (r *Router) store(pageSlug, imageID string, raw []byte) error {
	if r.outputDir == "" {
		return nil
	}
	dir := filepath.Join(r.outputDir, pageSlug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image dir: %w", err)
	}
	path := filepath.Join(dir, imageID+".png")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
