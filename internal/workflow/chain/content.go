package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "pageweave-api/internal/domain/service"
	wfmodel "pageweave-api/internal/workflow/model"
	wfnode "pageweave-api/internal/workflow/node"
	workflowport "pageweave-api/internal/workflow/port"
	workflowprompt "pageweave-api/internal/workflow/prompt"
	"pageweave-api/pkg/logger"
)

// ContentChain 是页面内容生成主链：模板渲染 -> Generate -> 截取 JSON。
// 输出保持原始 JSON 文本，结构解析与槽位校验由应用层完成。
type ContentChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.ContentGenerateInput, *wfmodel.ContentGenerateOutput]
	chainErr  error
}

func NewContentChain(factory workflowport.ChatModelFactory) *ContentChain {
	return &ContentChain{factory: factory}
}

func (c *ContentChain) Invoke(ctx context.Context, in *wfmodel.ContentGenerateInput) (*wfmodel.ContentGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if strings.TrimSpace(in.SlotPlan) == "" {
		return nil, fmt.Errorf("slot plan is required")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type contentChainState struct {
	In       *wfmodel.ContentGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *ContentChain) getChain() (compose.Runnable[*wfmodel.ContentGenerateInput, *wfmodel.ContentGenerateOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *ContentChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.ContentGenerateInput, *wfmodel.ContentGenerateOutput], error) {
	chain := compose.NewChain[*wfmodel.ContentGenerateInput, *wfmodel.ContentGenerateOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.ContentGenerateInput) (*contentChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &contentChainState{In: in}, nil
		}),
		compose.WithNodeName("content.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *contentChainState) (*contentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatContentMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("content.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *contentChainState) (*contentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "page_content_generate", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildContentModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildContentModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("content.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *contentChainState) (*wfmodel.ContentGenerateOutput, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			out := &wfmodel.ContentGenerateOutput{
				RawJSON: wfnode.ExtractJSONObject(st.OutMsg.Content),
				Meta: wfmodel.LLMUsageMeta{
					Provider:    strings.TrimSpace(st.In.Provider),
					Model:       strings.TrimSpace(st.In.Model),
					GeneratedAt: time.Now(),
				},
			}
			if st.OutMsg.ResponseMeta != nil && st.OutMsg.ResponseMeta.Usage != nil {
				out.Meta.PromptTokens = st.OutMsg.ResponseMeta.Usage.PromptTokens
				out.Meta.CompletionTokens = st.OutMsg.ResponseMeta.Usage.CompletionTokens
			}
			return out, nil
		}),
		compose.WithNodeName("content.finalize"),
	)

	return chain.Compile(ctx)
}

var contentPromptRegistry = workflowprompt.NewRegistry()

func formatContentMessages(ctx context.Context, in *wfmodel.ContentGenerateInput) ([]*schema.Message, error) {
	tpl, err := contentPromptRegistry.ChatTemplate(workflowprompt.PromptPageContentV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"site_id":           strings.TrimSpace(in.SiteID),
		"layout_id":         strings.TrimSpace(in.LayoutID),
		"slot_plan":         strings.TrimSpace(in.SlotPlan),
		"merged_context":    strings.TrimSpace(in.MergedContext),
		"retrieved_context": strings.TrimSpace(in.RetrievedContext),
		"query":             strings.TrimSpace(in.Query),
	}
	return tpl.Format(ctx, vars)
}

func buildContentModelOptions(in *wfmodel.ContentGenerateInput, enableJSON bool) []model.Option {
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

	// 块内容结构随版式变化，json_schema 难以穷举，这里只约束为 JSON 输出。
	if enableJSON {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_object",
			},
		}))
	}
	return opts
}
