package model

// ContentGenerateInput 页面内容生成链的输入。
// SlotPlan 为版式槽位的文本化描述（逐行 "index. type/variant"），
// RetrievedContext 为检索到的知识片段拼接文本。
type ContentGenerateInput struct {
	Query            string
	LayoutID         string
	SlotPlan         string
	MergedContext    string
	RetrievedContext string
	SiteID           string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// ContentGenerateOutput 模型返回的原始内容 JSON 文本与调用元数据。
// 解析与结构校验由应用层完成，这里只承载原文。
type ContentGenerateOutput struct {
	RawJSON string
	Meta    LLMUsageMeta
}
