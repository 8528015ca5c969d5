package model

import "time"

// 后端标识符。
const (
	BackendLocal    = "local"
	BackendWeb      = "web"
	BackendTemplate = "template"
	BackendFallback = "fallback"
)

// CapabilitySnapshot 是探测器对本地推理后端的一次快照。
// 每次编排调用重新探测，绝不跨请求缓存；
// Reachable 为 false 时 Load 与 Models 无意义，不得参与路由判断。
type CapabilitySnapshot struct {
	Reachable   bool     `json:"reachable"`
	Load        int      `json:"load"`
	LastSeenSec int64    `json:"lastSeenSec"`
	Models      []string `json:"models,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}

// RouteDecision 是一次编排的决策记录，仅用于观测，不由核心持久化。
type RouteDecision struct {
	SessionID      string             `json:"sessionId"`
	ConversationID string             `json:"conversationId"`
	Backend        string             `json:"backend"`
	Reason         string             `json:"reason"`
	Complexity     float64            `json:"complexity"`
	Snapshot       CapabilitySnapshot `json:"snapshot"`
	ElapsedMs      int64              `json:"elapsedMs"`
	Success        bool               `json:"success"`
	Timestamp      time.Time          `json:"timestamp"`
}
