package model

import "time"

// LLMUsageMeta 记录一次 LLM 调用的可观测元数据。
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	GeneratedAt      time.Time
}
