package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "pageweave-api/internal/domain/service"
	wfmodel "pageweave-api/internal/workflow/model"
	wfnode "pageweave-api/internal/workflow/node"
	workflowport "pageweave-api/internal/workflow/port"
	workflowprompt "pageweave-api/internal/workflow/prompt"
)

// 合规审查对页面文本做一次整体评估，页面过长时截断以控制 token 消耗。
const maxCompliancePageRunes = 20000

type ComplianceChain struct {
	factory workflowport.ChatModelFactory
}

func NewComplianceChain(factory workflowport.ChatModelFactory) *ComplianceChain {
	return &ComplianceChain{factory: factory}
}

func (c *ComplianceChain) Invoke(ctx context.Context, in *wfmodel.ComplianceInput) (*wfmodel.ComplianceOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.PageText) == "" {
		return nil, fmt.Errorf("page text is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "compliance_check", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatComplianceMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildComplianceModelOptions(in)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	out := &wfmodel.ComplianceOutput{}
	raw := wfnode.ExtractJSONObject(outMsg.Content)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return nil, fmt.Errorf("parse compliance response: %w", err)
	}

	out.Meta = wfmodel.LLMUsageMeta{
		Provider:    strings.TrimSpace(in.Provider),
		Model:       strings.TrimSpace(in.Model),
		GeneratedAt: time.Now(),
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		out.Meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		out.Meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}

var compliancePromptRegistry = workflowprompt.NewRegistry()

func formatComplianceMessages(ctx context.Context, in *wfmodel.ComplianceInput) ([]*schema.Message, error) {
	tpl, err := compliancePromptRegistry.ChatTemplate(workflowprompt.PromptComplianceCheckV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"site_id":   strings.TrimSpace(in.SiteID),
		"layout_id": strings.TrimSpace(in.LayoutID),
		"query":     strings.TrimSpace(in.Query),
		"page_text": wfnode.TruncateByRunes(strings.TrimSpace(in.PageText), maxCompliancePageRunes),
	}
	return tpl.Format(ctx, vars)
}

func buildComplianceModelOptions(in *wfmodel.ComplianceInput) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}
