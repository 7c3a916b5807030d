package entity

import (
	"regexp"
	"strings"
	"time"
)

// GenerationStatus 生成状态
type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "pending"
	GenerationInProgress GenerationStatus = "in_progress"
	GenerationComplete   GenerationStatus = "complete"
	GenerationFailed     GenerationStatus = "failed"
)

// GenerationState 生成状态记录
// 按页面路径键控，尽力而为、TTL 限时；仅用于幂等检查与可观测性，
// 不是权威数据。
type GenerationState struct {
	Status    GenerationStatus `json:"status"`
	Query     string           `json:"query"`
	Slug      string           `json:"slug"`
	Path      string           `json:"path"`
	CreatedAt time.Time        `json:"created_at"`
	Error     string           `json:"error,omitempty"`
}

// NewGenerationState 创建初始状态记录
func NewGenerationState(query, slug, path string) *GenerationState {
	return &GenerationState{
		Status:    GenerationPending,
		Query:     query,
		Slug:      slug,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 从查询文本计算页面 slug
// 确定性转换：相同查询永远得到相同 slug。
func Slugify(query string) string {
	s := strings.ToLower(strings.TrimSpace(query))
	s = slugCleaner.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "page"
	}
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

// PagePath 从 slug 计算页面路径
func PagePath(slug string) string {
	return "/p/" + slug
}
