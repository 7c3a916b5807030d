package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageIDPerBlockType(t *testing.T) {
	tests := []struct {
		blockType BlockType
		subIndex  int
		want      string
	}{
		{BlockHero, 0, "b1-hero"},
		{BlockCards, 2, "b1-card-2"},
		{BlockProductCards, 0, "b1-product-0"},
		{BlockColumns, 1, "b1-col-1"},
		{BlockSplitContent, 0, "b1-split"},
		{BlockRecipeDetail, 0, "b1-recipe"},
		{BlockRecipeCards, 3, "b1-recipe-3"},
		{BlockTechnique, 0, "b1-technique"},
		// 纯文本块类型没有图片标识
		{BlockFAQ, 0, ""},
		{BlockCTA, 0, ""},
		{BlockText, 0, ""},
		{BlockComparisonTable, 0, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.blockType), func(t *testing.T) {
			assert.Equal(t, tt.want, ImageID(tt.blockType, "b1", tt.subIndex))
		})
	}
}

func TestImageURLDeterministic(t *testing.T) {
	assert.Equal(t, "/generated/my-page/b2-hero.png", ImageURL("my-page", "b2-hero"))
	// 同输入永远同输出
	assert.Equal(t, ImageURL("my-page", "b2-hero"), ImageURL("my-page", "b2-hero"))
}

func TestIsAllowedVideoURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"youtube", "https://www.youtube.com/watch?v=abc123", true},
		{"youtube 短链", "https://youtu.be/abc123", true},
		{"vimeo", "https://vimeo.com/12345", true},
		{"mp4 直链", "https://cdn.example.com/demo.mp4", true},
		{"webm 直链", "http://cdn.example.com/demo.webm", true},
		{"未知域名网页", "https://example.com/video-page", false},
		{"非 http 协议", "ftp://youtube.com/clip", false},
		{"空字符串", "", false},
		{"纯文本", "not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedVideoURL(tt.url))
		})
	}
}
