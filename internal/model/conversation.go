// Package model 包含了应用的数据模型定义。
package model

import (
	"encoding/json"
	"time"
)

// 对话生命周期状态。status 仅是参考性元数据：
// 空闲窗口过期后对话被标记为 inactive，但后续消息仍然会追加到同一条记录上。
const (
	ConversationActive   = "active"
	ConversationInactive = "inactive"
)

// 消息角色。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation 代表一个会话下的持续对话线程。
type Conversation struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	SessionID     string     `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	DisplayName   *string    `gorm:"type:varchar(64)" json:"displayName"`
	Status        string     `gorm:"type:varchar(16);not null;default:active" json:"status"`
	MessageCount  int        `gorm:"not null;default:0" json:"messageCount"`
	NamePrompted  bool       `gorm:"not null;default:false" json:"namePrompted"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	EndedAt       *time.Time `json:"endedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message 代表对话中的一条消息，创建后不可变。
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);index;not null" json:"conversationId"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Mode           string    `gorm:"type:varchar(16)" json:"mode"`
	LatencyMs      *int64    `json:"latencyMs"`
	Metadata       string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageMeta 是消息的自由元数据，序列化后存入 Metadata 列。
type MessageMeta struct {
	Timestamp      time.Time `json:"timestamp"`
	Mode           string    `json:"mode,omitempty"`
	Source         string    `json:"source,omitempty"`
	JournalExcerpt string    `json:"journalExcerpt,omitempty"`
}

// Encode 将元数据序列化为 JSON 字符串。
func (m MessageMeta) Encode() string {
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ChatMessage 是传递给推理后端的角色消息（不落库）。
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
