package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pageweave-api/internal/application/intent"
	"pageweave-api/internal/application/layout"
	"pageweave-api/internal/application/retrieval"
	"pageweave-api/internal/application/session"
	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/domain/repository"
	"pageweave-api/internal/infrastructure/messaging"
	apperrors "pageweave-api/pkg/errors"
	"pageweave-api/pkg/logger"
	"pageweave-api/pkg/metrics"
)

// GenerateRequest 一次页面生成请求
type GenerateRequest struct {
	SiteID    string
	SessionID string
	Query     string
}

// RunResult 一次成功运行的汇总
type RunResult struct {
	Slug       string
	Path       string
	PageURL    string
	LayoutID   entity.LayoutID
	BlockCount int
	ImageCount int
	Duration   time.Duration
}

// Orchestrator 页面生成编排器
// 单请求单实例的状态机：分类 -> {检索 ‖ 实体抽取} -> 选版式 -> 调整 ->
// 生成内容 -> 槽位映射 -> 逐块流式输出 -> 图片请求 -> 并发出图 -> 合规 ->
// 发布。除并行汇合点外各阶段严格串行，每个阶段只消费前序阶段的不可变输出。
type Orchestrator struct {
	merger     *session.Merger
	classifier Classifier
	extractor  EntityExtractor
	retriever  ContextRetriever
	selector   *layout.Selector
	generator  ContentGenerator
	builder    ImageRequestBuilder
	renderer   BlockRenderer
	images     ImageGenerator
	checker    ComplianceChecker

	sessions repository.SessionRepository
	states   repository.StateRepository
	pages    repository.PageRepository
	producer LifecyclePublisher

	genCfg   *config.GenerationConfig
	features config.FeaturesConfig
}

// NewOrchestrator 创建编排器
func NewOrchestrator(
	merger *session.Merger,
	classifier Classifier,
	extractor EntityExtractor,
	retriever ContextRetriever,
	selector *layout.Selector,
	generator ContentGenerator,
	builder ImageRequestBuilder,
	renderer BlockRenderer,
	images ImageGenerator,
	checker ComplianceChecker,
	sessions repository.SessionRepository,
	states repository.StateRepository,
	pages repository.PageRepository,
	producer LifecyclePublisher,
	genCfg *config.GenerationConfig,
	features config.FeaturesConfig,
) *Orchestrator {
	return &Orchestrator{
		merger:     merger,
		classifier: classifier,
		extractor:  extractor,
		retriever:  retriever,
		selector:   selector,
		generator:  generator,
		builder:    builder,
		renderer:   renderer,
		images:     images,
		checker:    checker,
		sessions:   sessions,
		states:     states,
		pages:      pages,
		producer:   producer,
		genCfg:     genCfg,
		features:   features,
	}
}

// errSinkClosed 消费端关闭连接，本次运行就地终止但不算失败
var errSinkClosed = fmt.Errorf("event sink closed by consumer")

// Run 执行一次完整的页面生成
// 任何阶段抛出的错误在这里统一捕获一次：发射单个终止 error 事件、
// 更新状态记录为 failed，再原样返回给调用方。已流出的内容不回收。
func (o *Orchestrator) Run(ctx context.Context, req *GenerateRequest, sink EventSink) (*RunResult, error) {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "query is required")
	}

	slug := entity.Slugify(req.Query)
	state := entity.NewGenerationState(req.Query, slug, entity.PagePath(slug))

	acquired, err := o.states.Acquire(ctx, req.SiteID, state)
	if err != nil {
		// 状态记录是尽力而为的，锁服务不可用时继续运行
		logger.Warn(ctx, "generation state acquire failed, proceeding without lock",
			"path", state.Path, "error", err.Error())
	} else if !acquired {
		return nil, apperrors.ErrGenerationInFlight
	}

	start := time.Now()
	result, runErr := o.run(ctx, req, state, sink)

	switch {
	case runErr == nil:
		metrics.PageGenerationTotal.WithLabelValues(string(result.LayoutID), "success").Inc()
		metrics.PageGenerationDuration.WithLabelValues(string(result.LayoutID)).Observe(time.Since(start).Seconds())
		state.Status = entity.GenerationComplete
		o.updateState(ctx, req.SiteID, state)
		return result, nil

	case runErr == errSinkClosed:
		// 连接断开不算失败，但要立即释放路径锁，允许客户端重试
		logger.Info(ctx, "consumer closed connection, run aborted",
			"path", state.Path, "query", req.Query)
		metrics.PageGenerationTotal.WithLabelValues("unknown", "aborted").Inc()
		o.releaseState(ctx, req.SiteID, state)
		return nil, nil

	default:
		appErr := apperrors.AsAppError(runErr)
		metrics.PageGenerationTotal.WithLabelValues("unknown", "failed").Inc()
		logger.Error(ctx, "page generation failed", runErr,
			"path", state.Path,
			"code", string(appErr.Code),
		)
		sink.Send(entity.NewErrorEvent(string(appErr.Code), appErr.Message, false))
		state.Status = entity.GenerationFailed
		state.Error = appErr.Message
		o.updateState(ctx, req.SiteID, state)
		return nil, runErr
	}
}

func (o *Orchestrator) run(ctx context.Context, req *GenerateRequest, state *entity.GenerationState, sink EventSink) (*RunResult, error) {
	start := time.Now()

	// 会话合并：历史轮次累积并入当前查询的上下文
	merged := o.mergeSession(ctx, req)

	// 分类
	stop := stageTimer("classify")
	cls := o.classifier.Classify(ctx, req.SiteID, req.Query, merged)
	stop()

	// 检索与实体抽取并行，双双完成后才进入版式选择
	stop = stageTimer("retrieve")
	retrievalRes, extracted := o.retrieveAndExtract(ctx, req, merged)
	stop()
	cls.Entities = intent.MergeEntities(cls.Entities, extracted)

	// 两遍版式决策
	stop = stageTimer("select_layout")
	decision := o.selector.Select(req.Query, cls)
	decision = o.selector.Adjust(ctx, decision, retrievalRes.RetrievalResult)
	stop()
	tpl := decision.Template

	if !sink.Send(entity.NewLayoutEvent(tpl.BlockTypes())) {
		return nil, errSinkClosed
	}

	state.Status = entity.GenerationInProgress
	o.updateState(ctx, req.SiteID, state)

	// 内容生成，唯一允许终止运行的外部调用
	stop = stageTimer("generate_content")
	content, err := o.generator.Generate(ctx, &GenerateContentInput{
		SiteID:    req.SiteID,
		Query:     req.Query,
		Template:  tpl,
		Merged:    merged,
		Retrieval: retrievalRes.RetrievalResult,
	})
	stop()
	if err != nil {
		return nil, err
	}

	// 槽位映射：长度与类型不符即快速失败，绝不错位渲染
	mapping, err := entity.BuildSlotMapping(tpl, content)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeContentMismatch, "generated content does not match layout").WithError(err)
	}

	// 图片策略先于渲染决定：复用既有素材的块两侧口径必须一致
	strategies := o.decideStrategies(content)

	// 按展开槽位顺序逐块渲染并流出
	stop = stageTimer("stream_blocks")
	pageHTML, err := o.streamBlocks(ctx, mapping, state.Slug, strategies, sink)
	stop()
	if err != nil {
		return nil, err
	}
	metrics.PageBlocksStreamed.WithLabelValues(string(tpl.ID)).Observe(float64(len(mapping.Bindings)))

	// 图片请求与占位事件
	requests := o.builder.BuildRequests(ctx, content, strategies)
	for _, imgReq := range requests {
		if !sink.Send(entity.NewImagePlaceholderEvent(imgReq.ID, imgReq.BlockID)) {
			return nil, errSinkClosed
		}
	}

	// 并发出图，就绪事件按完成顺序到达
	stop = stageTimer("generate_images")
	images := o.generateImages(ctx, state.Slug, requests, sink)
	stop()

	// 合规审查仅咨询性质，结论写日志与指标
	if o.checker != nil {
		stop = stageTimer("compliance")
		o.checker.Check(ctx, req.SiteID, req.Query, tpl.ID, pageHTML)
		stop()
	}

	// 发布与生命周期消息
	result := &RunResult{
		Slug:       state.Slug,
		Path:       state.Path,
		PageURL:    o.pageURL(state.Path),
		LayoutID:   tpl.ID,
		BlockCount: len(mapping.Bindings),
		ImageCount: len(images),
		Duration:   time.Since(start),
	}
	o.publish(ctx, req, content, pageHTML, result)
	o.appendSessionTurn(ctx, req, cls)

	if !sink.Send(entity.NewGenerationCompleteEvent(result.PageURL)) {
		return nil, errSinkClosed
	}
	return result, nil
}

func (o *Orchestrator) mergeSession(ctx context.Context, req *GenerateRequest) *entity.MergedContext {
	if o.merger == nil {
		return &entity.MergedContext{}
	}
	sc := &entity.SessionContext{}
	if o.sessions != nil && req.SessionID != "" {
		stored, err := o.sessions.Get(ctx, req.SiteID, req.SessionID)
		if err != nil {
			logger.Warn(ctx, "session load failed, treating as fresh session",
				"session_id", req.SessionID, "error", err.Error())
		} else if stored != nil {
			sc = stored
		}
	}
	return o.merger.Merge(sc, req.Query)
}

// retrieveAndExtract 运行中唯一的并行汇合点
func (o *Orchestrator) retrieveAndExtract(ctx context.Context, req *GenerateRequest, merged *entity.MergedContext) (*retrieval.Result, *entity.IntentEntities) {
	var (
		res       *retrieval.Result
		extracted *entity.IntentEntities
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res = o.retriever.Retrieve(gctx, req.SiteID, req.Query)
		return nil
	})
	g.Go(func() error {
		extracted = o.extractor.Extract(gctx, req.Query, merged)
		return nil
	})
	_ = g.Wait()

	if res == nil {
		res = &retrieval.Result{RetrievalResult: entity.EmptyRetrievalResult()}
	}
	return res, extracted
}

// streamBlocks 逐块渲染并流出
// 分区样式读自槽位绑定，生成器产出的内容块全程只读。
func (o *Orchestrator) streamBlocks(ctx context.Context, mapping *entity.SlotMapping, slug string, strategies map[string]entity.ImageStrategy, sink EventSink) (string, error) {
	var page strings.Builder
	for _, binding := range mapping.Bindings {
		block := binding.Block

		if !sink.Send(entity.NewBlockStartEvent(block.ID, block.Type, binding.SlotIndex)) {
			return "", errSinkClosed
		}
		html := o.renderer.Render(ctx, binding, slug, strategies[block.ID])
		if !sink.Send(entity.NewBlockContentEvent(block.ID, html, binding.SectionStyle)) {
			return "", errSinkClosed
		}
		if !sink.Send(entity.NewBlockCompleteEvent(block.ID)) {
			return "", errSinkClosed
		}
		page.WriteString(html)
	}
	return page.String(), nil
}

func (o *Orchestrator) decideStrategies(content *entity.GeneratedContent) map[string]entity.ImageStrategy {
	strategies := make(map[string]entity.ImageStrategy, len(content.Blocks))
	for i := range content.Blocks {
		block := &content.Blocks[i]
		strategies[block.ID] = o.builder.DecideStrategy(block)
	}
	return strategies
}

func (o *Orchestrator) generateImages(ctx context.Context, slug string, requests []entity.ImageRequest, sink EventSink) []entity.GeneratedImage {
	if o.images == nil || len(requests) == 0 {
		return nil
	}
	return o.images.GenerateBatch(ctx, slug, requests, func(img entity.GeneratedImage) {
		sink.Send(entity.NewImageReadyEvent(img.ID, img.URL))
	})
}

func (o *Orchestrator) publish(ctx context.Context, req *GenerateRequest, content *entity.GeneratedContent, pageHTML string, result *RunResult) {
	if !o.features.Publish.Enabled || o.pages == nil {
		return
	}
	pageRow := &entity.Page{
		Slug:       result.Slug,
		Path:       result.Path,
		Title:      content.Headline,
		Query:      req.Query,
		LayoutID:   string(result.LayoutID),
		HTML:       pageHTML,
		BlockCount: result.BlockCount,
		ImageCount: result.ImageCount,
		Status:     entity.PageStatusPublished,
	}
	if err := o.pages.Upsert(ctx, pageRow); err != nil {
		// 发布失败不终止运行：页面内容已经完整流出
		logger.Error(ctx, "page publish failed", err, "slug", result.Slug)
		return
	}

	if o.features.Publish.EmitLifecycle && o.producer != nil {
		_, err := o.producer.PublishPageGenerated(ctx, &messaging.PageGeneratedMessage{
			SiteID:     req.SiteID,
			SessionID:  req.SessionID,
			Slug:       result.Slug,
			Path:       result.Path,
			LayoutID:   string(result.LayoutID),
			Query:      req.Query,
			BlockCount: result.BlockCount,
			ImageCount: result.ImageCount,
			DurationMs: result.Duration.Milliseconds(),
		})
		if err != nil {
			logger.Warn(ctx, "lifecycle publish failed", "slug", result.Slug, "error", err.Error())
		}
	}
}

func (o *Orchestrator) appendSessionTurn(ctx context.Context, req *GenerateRequest, cls *entity.IntentClassification) {
	if o.sessions == nil || req.SessionID == "" {
		return
	}
	turn := entity.SessionTurn{
		Query:    req.Query,
		Intent:   cls.IntentType,
		Entities: cls.Entities,
	}
	if err := o.sessions.Append(ctx, req.SiteID, req.SessionID, turn); err != nil {
		logger.Warn(ctx, "session append failed", "session_id", req.SessionID, "error", err.Error())
	}
}

// releaseState 删除路径锁
// 走到这里时请求上下文往往已被取消，释放要在独立上下文上执行。
func (o *Orchestrator) releaseState(ctx context.Context, siteID string, state *entity.GenerationState) {
	if o.states == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := o.states.Release(ctx, siteID, state.Path); err != nil {
		logger.Warn(ctx, "generation state release failed",
			"path", state.Path, "error", err.Error())
	}
}

func (o *Orchestrator) updateState(ctx context.Context, siteID string, state *entity.GenerationState) {
	if o.states == nil {
		return
	}
	if err := o.states.Update(ctx, siteID, state); err != nil {
		logger.Warn(ctx, "generation state update failed",
			"path", state.Path, "status", string(state.Status), "error", err.Error())
	}
}

func (o *Orchestrator) pageURL(path string) string {
	if o.genCfg != nil && o.genCfg.PublicBaseURL != "" {
		return strings.TrimRight(o.genCfg.PublicBaseURL, "/") + path
	}
	return path
}

func stageTimer(stage string) func() {
	start := time.Now()
	return func() {
		metrics.PageStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
