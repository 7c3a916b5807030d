package imagegen

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
)

// PlaceholderProvider 在所有真实后端不可用时兜底，
// 生成一张确定性的纯色占位图，保证流水线不因图片失败而中断。
type PlaceholderProvider struct{}

// NewPlaceholderProvider 创建占位图后端
func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{}
}

func (p *PlaceholderProvider) Name() string {
	return "placeholder"
}

// Generate 生成一张纯色占位 PNG，内容只取决于尺寸
func (p *PlaceholderProvider) Generate(_ context.Context, _ string, size string) ([]byte, error) {
	w, h := 1024, 1024
	if size == "1792x1024" {
		w, h = 1792, 1024
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: 0xe8, G: 0xe6, B: 0xe1, A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
