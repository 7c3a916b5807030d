package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"普通查询", "Healthy Living Tips", "healthy-living-tips"},
		{"标点被折叠", "what's the best blender?!", "what-s-the-best-blender"},
		{"首尾分隔符被去除", "  --smoothies--  ", "smoothies"},
		{"空查询兜底", "   ", "page"},
		{"纯符号兜底", "???", "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.query))
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	q := "Compare the A3500 and the A2500"
	assert.Equal(t, Slugify(q), Slugify(q))
}

func TestSlugifyLongQueryTruncated(t *testing.T) {
	long := strings.Repeat("blender ", 30)
	slug := Slugify(long)
	assert.LessOrEqual(t, len(slug), 80)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func TestPagePath(t *testing.T) {
	assert.Equal(t, "/p/healthy-living-tips", PagePath("healthy-living-tips"))
}

func TestNewGenerationState(t *testing.T) {
	state := NewGenerationState("some query", "some-query", "/p/some-query")

	assert.Equal(t, GenerationPending, state.Status)
	assert.Equal(t, "some query", state.Query)
	assert.Equal(t, "some-query", state.Slug)
	assert.Equal(t, "/p/some-query", state.Path)
	assert.False(t, state.CreatedAt.IsZero())
}
