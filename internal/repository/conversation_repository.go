// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"nova-chat-go/internal/model"
)

// ConversationRepository 接口定义了对话与消息的持久化操作。
// 消息是追加写入的，创建后不再修改。
type ConversationRepository interface {
	Create(conv *model.Conversation) error
	FindLatestBySession(sessionID string) (*model.Conversation, error)
	FindByID(conversationID string) (*model.Conversation, error)
	UpdateStatus(conversationID, status string, endedAt *time.Time) error
	UpdateDisplayName(conversationID, name string) error
	MarkNamePrompted(conversationID string) error
	AppendMessage(msg *model.Message) error
	RecentMessages(conversationID string, limit int) ([]model.Message, error)
}

// conversationRepository 是 ConversationRepository 接口的 GORM 实现。
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create 在数据库中创建一条新的对话记录。
func (r *conversationRepository) Create(conv *model.Conversation) error {
	return r.db.Create(conv).Error
}

// FindLatestBySession 查找某会话最近创建的对话；不存在时返回 (nil, nil)。
func (r *conversationRepository) FindLatestBySession(sessionID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC").First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByID 根据对话 ID 查找对话记录。
func (r *conversationRepository) FindByID(conversationID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("id = ?", conversationID).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// UpdateStatus 更新对话的生命周期状态。
func (r *conversationRepository) UpdateStatus(conversationID, status string, endedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if endedAt != nil {
		updates["ended_at"] = endedAt
	}
	return r.db.Model(&model.Conversation{}).Where("id = ?", conversationID).Updates(updates).Error
}

// UpdateDisplayName 记录该对话用户的显示名。
func (r *conversationRepository) UpdateDisplayName(conversationID, name string) error {
	return r.db.Model(&model.Conversation{}).Where("id = ?", conversationID).
		Update("display_name", name).Error
}

// MarkNamePrompted 标记该对话已经请求过用户姓名（对话生命周期内最多一次）。
func (r *conversationRepository) MarkNamePrompted(conversationID string) error {
	return r.db.Model(&model.Conversation{}).Where("id = ?", conversationID).
		Update("name_prompted", true).Error
}

// AppendMessage 追加一条消息，并同步推进对话的消息计数与活动时间。
func (r *conversationRepository) AppendMessage(msg *model.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&model.Conversation{}).Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"message_count":   gorm.Expr("message_count + 1"),
				"last_message_at": now,
			}).Error
	})
}

// RecentMessages 按创建时间返回最近的 limit 条消息（结果按时间升序排列）。
func (r *conversationRepository) RecentMessages(conversationID string, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// 倒序查询取最近 N 条，再翻转为时间升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
