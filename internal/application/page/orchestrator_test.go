package page

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageweave-api/internal/application/imaging"
	"pageweave-api/internal/application/layout"
	"pageweave-api/internal/application/render"
	"pageweave-api/internal/application/retrieval"
	"pageweave-api/internal/application/session"
	"pageweave-api/internal/config"
	"pageweave-api/internal/domain/entity"
	"pageweave-api/internal/infrastructure/messaging"
	apperrors "pageweave-api/pkg/errors"
)

type stubClassifier struct {
	result *entity.IntentClassification
}

func (s *stubClassifier) Classify(context.Context, string, string, *entity.MergedContext) *entity.IntentClassification {
	if s.result != nil {
		return s.result
	}
	return entity.DefaultClassification()
}

type stubExtractor struct{}

func (stubExtractor) Extract(context.Context, string, *entity.MergedContext) *entity.IntentEntities {
	return &entity.IntentEntities{}
}

type stubRetriever struct {
	chunks []entity.KnowledgeChunk
}

func (s *stubRetriever) Retrieve(context.Context, string, string) *retrieval.Result {
	res := &retrieval.Result{RetrievalResult: entity.EmptyRetrievalResult()}
	res.Chunks = s.chunks
	res.Recompute()
	return res
}

// stubGenerator 按模板槽位构造对位内容；err 非空时模拟生成失败
type stubGenerator struct {
	err        error
	misaligned bool
	last       *entity.GeneratedContent
}

func (s *stubGenerator) Generate(_ context.Context, in *GenerateContentInput) (*entity.GeneratedContent, error) {
	if s.err != nil {
		return nil, s.err
	}
	content := &entity.GeneratedContent{Headline: "Test Page"}
	for i, slot := range in.Template.FlattenSlots() {
		blockType := slot.Type
		if s.misaligned && i == 0 {
			blockType = entity.BlockText
		}
		content.Blocks = append(content.Blocks, entity.ContentBlock{
			ID:      fmt.Sprintf("block-%d", i),
			Type:    blockType,
			Content: payloadFor(blockType),
		})
	}
	s.last = content
	return content, nil
}

func payloadFor(t entity.BlockType) json.RawMessage {
	switch t {
	case entity.BlockHero:
		return json.RawMessage(`{"title":"T","image_prompt":"p"}`)
	case entity.BlockCards:
		return json.RawMessage(`{"cards":[{"title":"C","image_prompt":"p"}]}`)
	case entity.BlockProductCards:
		return json.RawMessage(`{"products":[{"name":"A3500","image_prompt":"p"}]}`)
	case entity.BlockComparisonTable:
		return json.RawMessage(`{"columns":["A"],"rows":[["1"]]}`)
	case entity.BlockColumns:
		return json.RawMessage(`{"columns":[{"body":"b"}]}`)
	case entity.BlockSplitContent:
		return json.RawMessage(`{"heading":"H","body":"B","image_prompt":"p"}`)
	case entity.BlockRecipeDetail:
		return json.RawMessage(`{"name":"R","ingredients":[],"steps":["mix"],"image_prompt":"p"}`)
	case entity.BlockRecipeCards:
		return json.RawMessage(`{"recipes":[{"name":"R","image_prompt":"p"}]}`)
	case entity.BlockTechnique:
		return json.RawMessage(`{"title":"Tamper"}`)
	case entity.BlockFAQ:
		return json.RawMessage(`{"items":[{"question":"Q","answer":"A"}]}`)
	case entity.BlockCTA:
		return json.RawMessage(`{"heading":"Go","label":"Buy","href":"/shop"}`)
	default:
		return json.RawMessage(`{"markdown":"text"}`)
	}
}

// stubImages 同步回调就绪事件，URL 确定性计算
type stubImages struct{}

func (stubImages) GenerateBatch(_ context.Context, slug string, requests []entity.ImageRequest, onReady func(entity.GeneratedImage)) []entity.GeneratedImage {
	out := make([]entity.GeneratedImage, 0, len(requests))
	for _, req := range requests {
		img := entity.GeneratedImage{ID: req.ID, URL: entity.ImageURL(slug, req.ID)}
		out = append(out, img)
		if onReady != nil {
			onReady(img)
		}
	}
	return out
}

type stubStateRepo struct {
	mu       sync.Mutex
	acquired bool
	inFlight bool
	states   []*entity.GenerationState
	released []string
}

func (s *stubStateRepo) Acquire(_ context.Context, _ string, state *entity.GenerationState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false, nil
	}
	s.acquired = true
	s.states = append(s.states, cloneState(state))
	return true, nil
}

func (s *stubStateRepo) Get(context.Context, string, string) (*entity.GenerationState, error) {
	return nil, nil
}

func (s *stubStateRepo) Update(_ context.Context, _ string, state *entity.GenerationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, cloneState(state))
	return nil
}

func (s *stubStateRepo) Release(_ context.Context, _ string, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, path)
	s.inFlight = false
	return nil
}

func cloneState(state *entity.GenerationState) *entity.GenerationState {
	c := *state
	return &c
}

func (s *stubStateRepo) lastStatus() entity.GenerationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.states) == 0 {
		return ""
	}
	return s.states[len(s.states)-1].Status
}

type stubSessionRepo struct {
	turns []entity.SessionTurn
}

func (s *stubSessionRepo) Get(context.Context, string, string) (*entity.SessionContext, error) {
	return &entity.SessionContext{Turns: s.turns}, nil
}

func (s *stubSessionRepo) Append(_ context.Context, _, _ string, turn entity.SessionTurn) error {
	s.turns = append(s.turns, turn)
	return nil
}

func (s *stubSessionRepo) Reset(context.Context, string, string) error {
	s.turns = nil
	return nil
}

type stubPageRepo struct {
	pages []*entity.Page
	err   error
}

func (s *stubPageRepo) Upsert(_ context.Context, p *entity.Page) error {
	if s.err != nil {
		return s.err
	}
	s.pages = append(s.pages, p)
	return nil
}

func (s *stubPageRepo) GetBySlug(context.Context, string) (*entity.Page, error) { return nil, nil }

func (s *stubPageRepo) List(context.Context, int, int) ([]*entity.Page, int64, error) {
	return nil, 0, nil
}

type stubProducer struct {
	published []*messaging.PageGeneratedMessage
}

func (s *stubProducer) PublishPageGenerated(_ context.Context, event *messaging.PageGeneratedMessage) (string, error) {
	s.published = append(s.published, event)
	return "1-0", nil
}

// collectSink 收集事件；closedAfter >= 0 时在第 N 个事件后模拟连接关闭
type collectSink struct {
	mu          sync.Mutex
	events      []entity.ProgressEvent
	closedAfter int
}

func newCollectSink() *collectSink { return &collectSink{closedAfter: -1} }

func (s *collectSink) Send(ev entity.ProgressEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closedAfter >= 0 && len(s.events) >= s.closedAfter {
		return false
	}
	s.events = append(s.events, ev)
	return true
}

func (s *collectSink) types() []entity.ProgressEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ProgressEventType, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	orch     *Orchestrator
	states   *stubStateRepo
	sessions *stubSessionRepo
	pages    *stubPageRepo
	producer *stubProducer
}

func newFixture(cls *entity.IntentClassification, gen ContentGenerator, chunks []entity.KnowledgeChunk) *fixture {
	f := &fixture{
		states:   &stubStateRepo{},
		sessions: &stubSessionRepo{},
		pages:    &stubPageRepo{},
		producer: &stubProducer{},
	}
	catalog := layout.NewCatalog()
	f.orch = NewOrchestrator(
		session.NewMerger(),
		&stubClassifier{result: cls},
		stubExtractor{},
		&stubRetriever{chunks: chunks},
		layout.NewSelector(catalog, layout.NewProductCatalog(), 0.85),
		gen,
		imaging.NewBuilder(),
		render.NewRenderer(),
		stubImages{},
		nil,
		f.sessions,
		f.states,
		f.pages,
		f.producer,
		&config.GenerationConfig{PublicBaseURL: "https://pages.example.com"},
		config.FeaturesConfig{Publish: config.PublishFeature{Enabled: true, EmitLifecycle: true}},
	)
	return f
}

func TestRunEventOrdering(t *testing.T) {
	f := newFixture(nil, &stubGenerator{}, []entity.KnowledgeChunk{
		{ID: "1", ContentType: entity.ChunkContentArticle},
	})
	sink := newCollectSink()

	result, err := f.orch.Run(context.Background(), &GenerateRequest{
		SiteID:    "site-1",
		SessionID: "sess-1",
		Query:     "healthy living tips",
	}, sink)
	require.NoError(t, err)
	require.NotNil(t, result)

	types := sink.types()
	require.NotEmpty(t, types)
	assert.Equal(t, entity.EventLayout, types[0])
	assert.Equal(t, entity.EventGenerationComplete, types[len(types)-1])

	// 块事件按槽位顺序成三元组出现，占位先于任何就绪事件
	var sawPlaceholder, sawReady bool
	blockPhaseOver := false
	for i := 1; i < len(types)-1; i++ {
		switch types[i] {
		case entity.EventBlockStart:
			assert.False(t, blockPhaseOver, "block events must precede image events")
			assert.Equal(t, entity.EventBlockContent, types[i+1])
			assert.Equal(t, entity.EventBlockComplete, types[i+2])
		case entity.EventImagePlaceholder:
			blockPhaseOver = true
			sawPlaceholder = true
			assert.False(t, sawReady, "placeholders must precede ready events")
		case entity.EventImageReady:
			sawReady = true
		}
	}
	assert.True(t, sawPlaceholder)
	assert.True(t, sawReady)

	// 成功运行落库并发布生命周期消息
	require.Len(t, f.pages.pages, 1)
	assert.Equal(t, "healthy-living-tips", f.pages.pages[0].Slug)
	require.Len(t, f.producer.published, 1)
	assert.Equal(t, entity.GenerationComplete, f.states.lastStatus())
	assert.Equal(t, "https://pages.example.com/p/healthy-living-tips", result.PageURL)

	// 本轮写回会话
	require.Len(t, f.sessions.turns, 1)
	assert.Equal(t, "healthy living tips", f.sessions.turns[0].Query)
}

// 裸产品名查询锁定单品详情，即使分类器以 0.95 置信度给出比较布局。
func TestRunBareProductOverridesClassifier(t *testing.T) {
	f := newFixture(&entity.IntentClassification{
		IntentType: entity.IntentComparison,
		Confidence: 0.95,
		LayoutID:   string(entity.LayoutProductComparison),
		Entities:   entity.IntentEntities{Products: []string{"a3500", "a2500"}},
	}, &stubGenerator{}, nil)
	sink := newCollectSink()

	result, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "A3500"}, sink)
	require.NoError(t, err)
	assert.Equal(t, entity.LayoutProductDetail, result.LayoutID)
}

func TestRunContentGenerationFatal(t *testing.T) {
	genErr := apperrors.New(apperrors.CodeGenerationFailed, "page content generation failed")
	f := newFixture(nil, &stubGenerator{err: genErr}, nil)
	sink := newCollectSink()

	_, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "anything"}, sink)
	require.Error(t, err)

	// 恰好一个终止 error 事件，已流出的 layout 事件不回收
	var errorEvents int
	for _, ty := range sink.types() {
		if ty == entity.EventError {
			errorEvents++
		}
	}
	assert.Equal(t, 1, errorEvents)
	assert.Equal(t, entity.EventError, sink.types()[len(sink.types())-1])
	assert.Equal(t, entity.GenerationFailed, f.states.lastStatus())
	assert.Empty(t, f.pages.pages)
}

// 槽位与内容不对位是致命错误，错误码稳定。
func TestRunSlotMismatchFatal(t *testing.T) {
	f := newFixture(nil, &stubGenerator{misaligned: true}, nil)
	sink := newCollectSink()

	_, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "anything"}, sink)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeContentMismatch, apperrors.AsAppError(err).Code)
}

func TestRunInFlightRejected(t *testing.T) {
	f := newFixture(nil, &stubGenerator{}, nil)
	f.states.inFlight = true
	sink := newCollectSink()

	_, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "anything"}, sink)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGenerationInFlight, apperrors.AsAppError(err).Code)
	assert.Empty(t, sink.types())
}

// 连接关闭后停止发射且不算失败，路径锁立即释放，重试不被拒绝。
func TestRunSinkClosed(t *testing.T) {
	f := newFixture(nil, &stubGenerator{}, nil)
	sink := newCollectSink()
	sink.closedAfter = 1

	result, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "anything"}, sink)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NotEqual(t, entity.GenerationFailed, f.states.lastStatus())
	assert.Equal(t, []string{"/p/anything"}, f.states.released)

	// 同一路径的重试正常走完整流水线
	retry := newCollectSink()
	result, err = f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "anything"}, retry)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entity.EventGenerationComplete, retry.types()[len(retry.types())-1])
}

// 生成器产出的内容块全程只读，分区样式只出现在绑定与事件里。
func TestRunDoesNotMutateGeneratedContent(t *testing.T) {
	gen := &stubGenerator{}
	f := newFixture(nil, gen, nil)
	sink := newCollectSink()

	_, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "healthy living tips"}, sink)
	require.NoError(t, err)
	require.NotNil(t, gen.last)
	for _, block := range gen.last.Blocks {
		assert.Empty(t, block.SectionStyle)
	}
}

// 落库失败不终止运行：页面已完整流出，生命周期消息随之跳过。
func TestRunPublishFailureNotFatal(t *testing.T) {
	f := newFixture(nil, &stubGenerator{}, nil)
	f.pages.err = fmt.Errorf("connection refused")
	sink := newCollectSink()

	result, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "healthy living tips"}, sink)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entity.EventGenerationComplete, sink.types()[len(sink.types())-1])
	assert.Empty(t, f.producer.published)
	assert.Equal(t, entity.GenerationComplete, f.states.lastStatus())
}

// 相同输入重复运行产生完全一致的事件序列。
func TestRunDeterministicEvents(t *testing.T) {
	run := func() []entity.ProgressEvent {
		f := newFixture(nil, &stubGenerator{}, nil)
		sink := newCollectSink()
		_, err := f.orch.Run(context.Background(), &GenerateRequest{SiteID: "site-1", Query: "healthy living tips"}, sink)
		require.NoError(t, err)
		return sink.events
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type, "event %d", i)
	}
}
