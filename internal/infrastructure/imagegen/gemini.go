package imagegen

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"pageweave-api/internal/config"
)

// GeminiProvider 基于 Google GenAI SDK 的图片生成后端
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider 创建 Gemini 图片生成后端
func NewGeminiProvider(ctx context.Context, cfg config.ImageProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini image api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "imagen-3.0-generate-002"
	}
	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Generate 生成一张图片并返回 PNG 字节
func (p *GeminiProvider) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	resp, err := p.client.Models.GenerateImages(ctx, p.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image generate failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("gemini image generate returned no data")
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
