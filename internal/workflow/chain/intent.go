package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "pageweave-api/internal/domain/service"
	wfmodel "pageweave-api/internal/workflow/model"
	wfnode "pageweave-api/internal/workflow/node"
	workflowport "pageweave-api/internal/workflow/port"
	workflowprompt "pageweave-api/internal/workflow/prompt"
	"pageweave-api/pkg/logger"
)

// IntentChain 封装意图识别的一次 LLM 调用：模板渲染 -> Generate -> JSON 解析。
// 解析失败原样返回错误，降级策略由应用层决定。
type IntentChain struct {
	factory workflowport.ChatModelFactory
}

func NewIntentChain(factory workflowport.ChatModelFactory) *IntentChain {
	return &IntentChain{factory: factory}
}

func (c *IntentChain) Invoke(ctx context.Context, in *wfmodel.IntentClassifyInput) (*wfmodel.IntentClassifyOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "intent_classify", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatIntentMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildIntentModelOptions(in, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"provider", strings.TrimSpace(in.Provider),
			"model", strings.TrimSpace(in.Model),
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildIntentModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	out := &wfmodel.IntentClassifyOutput{}
	raw := wfnode.ExtractJSONObject(outMsg.Content)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return nil, fmt.Errorf("parse intent response: %w", err)
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

var intentPromptRegistry = workflowprompt.NewRegistry()

func formatIntentMessages(ctx context.Context, in *wfmodel.IntentClassifyInput) ([]*schema.Message, error) {
	tpl, err := intentPromptRegistry.ChatTemplate(workflowprompt.PromptIntentClassifyV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"site_id":         strings.TrimSpace(in.SiteID),
		"session_summary": strings.TrimSpace(in.SessionSummary),
		"query":           strings.TrimSpace(in.Query),
	}
	return tpl.Format(ctx, vars)
}

func buildIntentModelOptions(in *wfmodel.IntentClassifyInput, enableSchema bool) []model.Option {
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

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "intent_classification",
					"strict": false,
					"schema": intentJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func intentJSONSchema() map[string]any {
	// 说明：此处 schema 以“最小可用”为目标，避免过度约束导致模型输出失败。
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"intent", "confidence", "layout"},
		"properties": map[string]any{
			"intent":       map[string]any{"type": "string"},
			"confidence":   map[string]any{"type": "number"},
			"layout":       map[string]any{"type": "string"},
			"products":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"ingredients":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"goals":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"user_context": map[string]any{"type": "string"},
		},
	}
}
