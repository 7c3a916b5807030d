package entity

// SessionTurn 会话中的一轮历史交互
// 由调用方提供，追加后不可变。
type SessionTurn struct {
	Query    string         `json:"query"`
	Intent   IntentType     `json:"intent,omitempty"`
	Entities IntentEntities `json:"entities"`
}

// SessionContext 有序的历史轮次序列
type SessionContext struct {
	Turns []SessionTurn `json:"turns,omitempty"`
}

// Empty 检查是否存在历史轮次
func (s *SessionContext) Empty() bool {
	return s == nil || len(s.Turns) == 0
}

// MergedContext 历史轮次合并后的上下文
// 交给意图分类器与内容生成器，与当前查询一并消费。
type MergedContext struct {
	Products    []string `json:"products,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Goals       []string `json:"goals,omitempty"`
	// Constraints 饮食/过敏/宗教等约束，一旦出现则始终保留
	Constraints []string `json:"constraints,omitempty"`
	// ContextText 提供给 LLM 的自然语言摘要
	ContextText string `json:"context_text,omitempty"`
}

// Empty 检查合并上下文是否为空
func (m *MergedContext) Empty() bool {
	return m == nil || (len(m.Products) == 0 && len(m.Ingredients) == 0 &&
		len(m.Goals) == 0 && len(m.Constraints) == 0)
}
