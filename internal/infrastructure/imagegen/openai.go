package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"pageweave-api/internal/config"
)

// OpenAIProvider 基于 openai-go 官方 SDK 的图片生成后端
type OpenAIProvider struct {
	client openai.Client
	model  string
	size   string
}

// NewOpenAIProvider 创建 OpenAI 图片生成后端
func NewOpenAIProvider(cfg config.ImageProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai image api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "dall-e-3"
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		size:   cfg.Size,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Generate 生成一张图片并返回解码后的 PNG 字节
func (p *OpenAIProvider) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	if size == "" {
		size = p.size
	}

	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(p.model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		Size:           mapImageSize(size),
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generate failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai image generate returned no data")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return raw, nil
}

func mapImageSize(size string) openai.ImageGenerateParamsSize {
	switch size {
	case "256x256":
		return openai.ImageGenerateParamsSize256x256
	case "512x512":
		return openai.ImageGenerateParamsSize512x512
	case "1792x1024":
		return openai.ImageGenerateParamsSize1792x1024
	case "1024x1792":
		return openai.ImageGenerateParamsSize1024x1792
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}
