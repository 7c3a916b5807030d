// Package compliance 实现品牌语气合规审查
// 审查只具咨询性质：低分记录日志与指标，从不中断流水线或改写已生成的内容。
package compliance

import (
	"context"
	"strings"

	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/workflow/chain"
	wfmodel "pageweave-api/internal/workflow/model"
	"pageweave-api/pkg/logger"
	"pageweave-api/pkg/metrics"
)

// Verdict 一次合规审查的结论
type Verdict struct {
	IsCompliant bool     `json:"is_compliant"`
	Score       float64  `json:"score"`
	Issues      []string `json:"issues,omitempty"`
}

// Checker 合规审查器
type Checker struct {
	chain   *chain.ComplianceChain
	llmCfg  *config.LLMConfig
	feature config.ComplianceFeature
}

// NewChecker 创建合规审查器
func NewChecker(c *chain.ComplianceChain, llmCfg *config.LLMConfig, feature config.ComplianceFeature) *Checker {
	return &Checker{chain: c, llmCfg: llmCfg, feature: feature}
}

// Enabled 审查是否开启
func (c *Checker) Enabled() bool {
	return c != nil && c.chain != nil && c.feature.Enabled
}

// Check 对整页文本做一次合规审查
// 审查本身失败时按 PassOnFailure 返回放行或保守结论，永不返回错误。
func (c *Checker) Check(ctx context.Context, siteID, query string, layoutID entity.LayoutID, pageText string) *Verdict {
	if !c.Enabled() {
		return &Verdict{IsCompliant: true, Score: 1}
	}

	in := &wfmodel.ComplianceInput{
		Query:    query,
		LayoutID: string(layoutID),
		PageText: pageText,
		SiteID:   siteID,
	}
	if c.llmCfg != nil {
		in.Provider = c.llmCfg.DefaultProvider
		if p, ok := c.llmCfg.Providers[c.llmCfg.DefaultProvider]; ok {
			in.Model = p.Model
		}
	}

	out, err := c.chain.Invoke(ctx, in)
	if err != nil {
		logger.Warn(ctx, "compliance check failed, applying pass_on_failure policy",
			"site_id", siteID,
			"pass_on_failure", c.feature.PassOnFailure,
			"error", err.Error(),
		)
		return &Verdict{IsCompliant: c.feature.PassOnFailure, Score: 0, Issues: []string{"compliance check unavailable"}}
	}

	verdict := &Verdict{
		IsCompliant: out.Passed && out.Score >= c.feature.MinScore,
		Score:       out.Score,
		Issues:      out.Findings,
	}
	metrics.ComplianceScore.Observe(out.Score)
	if !verdict.IsCompliant {
		logger.Warn(ctx, "page below compliance threshold",
			"site_id", siteID,
			"score", out.Score,
			"min_score", c.feature.MinScore,
			"issues", strings.Join(out.Findings, "; "),
		)
	}
	return verdict
}
