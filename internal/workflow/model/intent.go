package model

// IntentClassifyInput 意图识别链的输入。
// SessionSummary 为会话历史的紧凑文本描述，空串表示全新会话。
type IntentClassifyInput struct {
	Query          string
	SessionSummary string
	SiteID         string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// IntentClassifyOutput 是模型返回的结构化意图结果。
// 字段与 prompt 中要求的 JSON schema 一一对应。
type IntentClassifyOutput struct {
	Intent      string       `json:"intent"`
	Confidence  float64      `json:"confidence"`
	Layout      string       `json:"layout"`
	Products    []string     `json:"products"`
	Ingredients []string     `json:"ingredients"`
	Goals       []string     `json:"goals"`
	UserContext string       `json:"user_context"`
	Meta        LLMUsageMeta `json:"-"`
}
