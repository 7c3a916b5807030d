package entity

// ChunkContentType 知识片段的内容类型
type ChunkContentType string

const (
	ChunkContentProduct ChunkContentType = "product"
	ChunkContentRecipe  ChunkContentType = "recipe"
	ChunkContentArticle ChunkContentType = "article"
	ChunkContentFAQ     ChunkContentType = "faq"
)

// KnowledgeChunk 一条检索命中的知识片段
type KnowledgeChunk struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Text        string           `json:"text"`
	ContentType ChunkContentType `json:"content_type"`
	Score       float64          `json:"score"`
}

// RetrievalResult 一次检索的聚合结果。
// HasProductInfo / HasRecipes 用于版式后调整，空结果不是错误。
type RetrievalResult struct {
	Chunks         []KnowledgeChunk `json:"chunks"`
	HasProductInfo bool             `json:"has_product_info"`
	HasRecipes     bool             `json:"has_recipes"`
}

// EmptyRetrievalResult 空检索结果，检索降级时作为占位
func EmptyRetrievalResult() *RetrievalResult {
	return &RetrievalResult{Chunks: []KnowledgeChunk{}}
}

// Empty 检索结果是否为空
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Chunks) == 0
}

// Recompute 根据片段内容类型回填聚合标记
func (r *RetrievalResult) Recompute() {
	if r == nil {
		return
	}
	r.HasProductInfo = false
	r.HasRecipes = false
	for _, c := range r.Chunks {
		switch c.ContentType {
		case ChunkContentProduct:
			r.HasProductInfo = true
		case ChunkContentRecipe:
			r.HasRecipes = true
		}
	}
}
