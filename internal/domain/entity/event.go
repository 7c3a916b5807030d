package entity

// ProgressEventType SSE 进度事件类型
type ProgressEventType string

const (
	EventLayout             ProgressEventType = "layout"
	EventBlockStart         ProgressEventType = "block-start"
	EventBlockContent       ProgressEventType = "block-content"
	EventBlockComplete      ProgressEventType = "block-complete"
	EventImagePlaceholder   ProgressEventType = "image-placeholder"
	EventImageReady         ProgressEventType = "image-ready"
	EventGenerationComplete ProgressEventType = "generation-complete"
	EventError              ProgressEventType = "error"
)

// ProgressEvent 一条进度事件
// 每次运行内事件按阶段顺序严格发出。
type ProgressEvent struct {
	Type    ProgressEventType `json:"type"`
	Payload any               `json:"payload"`
}

// LayoutEventPayload 布局预览事件载荷
type LayoutEventPayload struct {
	Blocks []BlockType `json:"blocks"`
}

// BlockStartPayload 块开始事件载荷
type BlockStartPayload struct {
	BlockID   string    `json:"blockId"`
	BlockType BlockType `json:"blockType"`
	Position  int       `json:"position"`
}

// BlockContentPayload 块内容事件载荷
type BlockContentPayload struct {
	BlockID      string `json:"blockId"`
	HTML         string `json:"html"`
	Partial      bool   `json:"partial"`
	SectionStyle string `json:"sectionStyle,omitempty"`
}

// BlockCompletePayload 块完成事件载荷
type BlockCompletePayload struct {
	BlockID string `json:"blockId"`
}

// ImagePlaceholderPayload 图片占位事件载荷
type ImagePlaceholderPayload struct {
	ImageID string `json:"imageId"`
	BlockID string `json:"blockId"`
}

// ImageReadyPayload 图片就绪事件载荷
type ImageReadyPayload struct {
	ImageID string `json:"imageId"`
	URL     string `json:"url"`
}

// GenerationCompletePayload 终态成功事件载荷
type GenerationCompletePayload struct {
	PageURL string `json:"pageUrl"`
}

// ErrorPayload 终态错误事件载荷
type ErrorPayload struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// 事件构造函数，保证载荷类型与事件类型一致

func NewLayoutEvent(blocks []BlockType) ProgressEvent {
	return ProgressEvent{Type: EventLayout, Payload: LayoutEventPayload{Blocks: blocks}}
}

func NewBlockStartEvent(blockID string, blockType BlockType, position int) ProgressEvent {
	return ProgressEvent{Type: EventBlockStart, Payload: BlockStartPayload{
		BlockID: blockID, BlockType: blockType, Position: position,
	}}
}

func NewBlockContentEvent(blockID, html, sectionStyle string) ProgressEvent {
	return ProgressEvent{Type: EventBlockContent, Payload: BlockContentPayload{
		BlockID: blockID, HTML: html, Partial: false, SectionStyle: sectionStyle,
	}}
}

func NewBlockCompleteEvent(blockID string) ProgressEvent {
	return ProgressEvent{Type: EventBlockComplete, Payload: BlockCompletePayload{BlockID: blockID}}
}

func NewImagePlaceholderEvent(imageID, blockID string) ProgressEvent {
	return ProgressEvent{Type: EventImagePlaceholder, Payload: ImagePlaceholderPayload{
		ImageID: imageID, BlockID: blockID,
	}}
}

func NewImageReadyEvent(imageID, url string) ProgressEvent {
	return ProgressEvent{Type: EventImageReady, Payload: ImageReadyPayload{ImageID: imageID, URL: url}}
}

func NewGenerationCompleteEvent(pageURL string) ProgressEvent {
	return ProgressEvent{Type: EventGenerationComplete, Payload: GenerationCompletePayload{PageURL: pageURL}}
}

func NewErrorEvent(code, message string, recoverable bool) ProgressEvent {
	return ProgressEvent{Type: EventError, Payload: ErrorPayload{
		Code: code, Message: message, Recoverable: recoverable,
	}}
}
