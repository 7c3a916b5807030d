package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// ImageStrategy 单块的图片策略决策
type ImageStrategy struct {
	UseExisting bool   `json:"use_existing"`
	ExistingURL string `json:"existing_url,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

// ImageRequest 一次图片生成请求
// 每个带图片的子元素至多产生一条。
type ImageRequest struct {
	ID          string `json:"id"`
	BlockID     string `json:"block_id"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Size        string `json:"size,omitempty"`
}

// GeneratedImage 外部提供商产出的图片，按 ID 关联回请求
type GeneratedImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ImageID 计算块内子元素的稳定图片标识
// 请求构建器与渲染器共用同一函数，保证两侧标识永不分叉。
func ImageID(blockType BlockType, blockID string, subIndex int) string {
	switch blockType {
	case BlockHero:
		return blockID + "-hero"
	case BlockCards:
		return fmt.Sprintf("%s-card-%d", blockID, subIndex)
	case BlockProductCards:
		return fmt.Sprintf("%s-product-%d", blockID, subIndex)
	case BlockColumns:
		return fmt.Sprintf("%s-col-%d", blockID, subIndex)
	case BlockSplitContent:
		return blockID + "-split"
	case BlockRecipeDetail:
		return blockID + "-recipe"
	case BlockRecipeCards:
		return fmt.Sprintf("%s-recipe-%d", blockID, subIndex)
	case BlockTechnique:
		return blockID + "-technique"
	default:
		return ""
	}
}

// ImageURL 计算图片的确定性访问路径
// 纯函数：图片生成前即可得到最终 URL，渲染可以先于图片完成。
func ImageURL(pageSlug, imageID string) string {
	return fmt.Sprintf("/generated/%s/%s.png", pageSlug, imageID)
}

// 视频白名单：域名与文件扩展名
var (
	allowedVideoHosts = map[string]struct{}{
		"youtube.com":     {},
		"www.youtube.com": {},
		"youtu.be":        {},
		"vimeo.com":       {},
		"www.vimeo.com":   {},
	}
	allowedVideoExts = []string{".mp4", ".webm", ".mov"}
)

// IsAllowedVideoURL 校验外部视频地址是否在固定白名单内
func IsAllowedVideoURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if _, ok := allowedVideoHosts[strings.ToLower(u.Host)]; ok {
		return true
	}
	lower := strings.ToLower(u.Path)
	for _, ext := range allowedVideoExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
