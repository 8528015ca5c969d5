package model

// 请求模式。auto 走完整的级联决策。
const (
	ModeChill     = "chill"
	ModeFullPower = "full-power"
	ModeJournal   = "journal"
	ModeAuto      = "auto"
)

// ValidMode 判断 mode 是否为受支持的取值。
func ValidMode(mode string) bool {
	switch mode {
	case ModeChill, ModeFullPower, ModeJournal, ModeAuto:
		return true
	}
	return false
}

// ChatResult 是一轮聊天编排的最终产出。
type ChatResult struct {
	Response       string `json:"response"`
	Mode           string `json:"mode"`
	SourceUsed     string `json:"sourceUsed"`
	ProcessingTime int64  `json:"processingTimeMs"`
	ConversationID string `json:"conversationId"`
}

// MessageDTO 是对话历史接口的响应条目，时间以 LocalTime 格式输出。
type MessageDTO struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Mode      string    `json:"mode"`
	LatencyMs *int64    `json:"latencyMs"`
	CreatedAt LocalTime `json:"createdAt"`
}

// NewMessageDTO 由持久化消息构建响应条目。
func NewMessageDTO(m Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		Mode:      m.Mode,
		LatencyMs: m.LatencyMs,
		CreatedAt: LocalTime(m.CreatedAt),
	}
}

// MessageSearchDTO 是消息搜索接口的响应条目。
type MessageSearchDTO struct {
	ConversationID string  `json:"conversationId"`
	Role           string  `json:"role"`
	Content        string  `json:"content"`
	Mode           string  `json:"mode"`
	CreatedAt      string  `json:"createdAt"`
	Score          float64 `json:"score"`
}

// EsMessageDoc 是写入 Elasticsearch 的消息文档结构。
type EsMessageDoc struct {
	SessionID      string `json:"session_id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Mode           string `json:"mode"`
	CreatedAt      string `json:"created_at"`
}
