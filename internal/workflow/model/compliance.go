package model

// ComplianceInput 合规审查链的输入：对生成完成的页面文本做一次整体检查。
type ComplianceInput struct {
	Query    string
	LayoutID string
	PageText string
	SiteID   string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// ComplianceOutput 模型返回的合规评估结果。
type ComplianceOutput struct {
	Score    float64      `json:"score"`
	Passed   bool         `json:"passed"`
	Findings []string     `json:"findings"`
	Meta     LLMUsageMeta `json:"-"`
}
