// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"nova-chat-go/internal/config"
	"nova-chat-go/internal/model"
	"nova-chat-go/internal/repository"
	"nova-chat-go/pkg/log"
)

// ConversationService 是对话与消息状态的唯一变更入口。
// 编排链路中的其他组件只通过它消费只读上下文。
type ConversationService interface {
	// GetOrCreate 返回会话当前的对话记录，没有则创建。
	// 空闲窗口过期只把状态翻为 inactive（参考性元数据），后续消息仍然追加到同一条记录。
	GetOrCreate(ctx context.Context, sessionID string) (*model.Conversation, error)
	// AppendMessage 追加一条不可变消息。
	AppendMessage(ctx context.Context, conversationID, role, content string, latencyMs *int64, meta model.MessageMeta) error
	// RecentHistory 按时间顺序返回最近 limit 条消息。
	RecentHistory(ctx context.Context, conversationID string, limit int) ([]model.Message, error)
	// SessionHistory 返回会话当前对话的最近消息；会话没有对话时返回空。
	SessionHistory(ctx context.Context, sessionID string, limit int) ([]model.Message, error)
	// GetDisplayName 返回该对话已知的显示名，未知时为空字符串。
	GetDisplayName(ctx context.Context, conv *model.Conversation) string
	// StoreDisplayName 记录显示名：写对话记录，同时写会话偏好。
	StoreDisplayName(ctx context.Context, conv *model.Conversation, name string) error
	// MarkNamePrompted 标记该对话已经请求过姓名。
	MarkNamePrompted(ctx context.Context, conv *model.Conversation) error
}

type conversationService struct {
	convRepo repository.ConversationRepository
	prefRepo repository.PreferenceRepository
	cfg      config.RouterConfig
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(convRepo repository.ConversationRepository, prefRepo repository.PreferenceRepository, cfg config.RouterConfig) ConversationService {
	return &conversationService{convRepo: convRepo, prefRepo: prefRepo, cfg: cfg}
}

// GetOrCreate 查找会话最近的对话；不存在则新建一条 active 记录。
func (s *conversationService) GetOrCreate(ctx context.Context, sessionID string) (*model.Conversation, error) {
	conv, err := s.convRepo.FindLatestBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	// 会话有活动就顺带刷新偏好的保留时长
	if err := s.prefRepo.Touch(ctx, sessionID); err != nil {
		log.Warnf("[Conversation] 刷新会话偏好失败, session=%s: %v", sessionID, err)
	}

	if conv == nil {
		conv = &model.Conversation{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Status:    model.ConversationActive,
		}
		if err := s.convRepo.Create(conv); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		log.Infof("[Conversation] 新建对话 %s, session=%s", conv.ID, sessionID)
		return conv, nil
	}

	// 空闲窗口过期：状态翻为 inactive，但对话记录继续使用
	if conv.Status == model.ConversationActive && conv.LastMessageAt != nil &&
		time.Since(*conv.LastMessageAt) > s.cfg.IdleWindow() {
		now := time.Now()
		if err := s.convRepo.UpdateStatus(conv.ID, model.ConversationInactive, &now); err != nil {
			log.Warnf("[Conversation] 标记对话 %s 为 inactive 失败: %v", conv.ID, err)
		} else {
			conv.Status = model.ConversationInactive
			conv.EndedAt = &now
		}
	}

	return conv, nil
}

// AppendMessage 持久化一条消息并推进对话元数据。
func (s *conversationService) AppendMessage(ctx context.Context, conversationID, role, content string, latencyMs *int64, meta model.MessageMeta) error {
	msg := &model.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Mode:           meta.Mode,
		LatencyMs:      latencyMs,
		Metadata:       meta.Encode(),
	}
	if err := s.convRepo.AppendMessage(msg); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// RecentHistory 返回对话最近的消息窗口。
func (s *conversationService) RecentHistory(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = s.cfg.History()
	}
	return s.convRepo.RecentMessages(conversationID, limit)
}

// SessionHistory 返回会话当前对话的最近消息。
func (s *conversationService) SessionHistory(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	conv, err := s.convRepo.FindLatestBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return []model.Message{}, nil
	}
	return s.RecentHistory(ctx, conv.ID, limit)
}

// GetDisplayName 优先取对话上的显示名，其次回退到会话偏好。
func (s *conversationService) GetDisplayName(ctx context.Context, conv *model.Conversation) string {
	if conv.DisplayName != nil && *conv.DisplayName != "" {
		return *conv.DisplayName
	}
	pref, err := s.prefRepo.Get(ctx, conv.SessionID)
	if err != nil {
		log.Warnf("[Conversation] 读取会话偏好失败, session=%s: %v", conv.SessionID, err)
		return ""
	}
	if pref == nil {
		return ""
	}
	return pref.DisplayName
}

// StoreDisplayName 同时落到对话记录与会话偏好。
func (s *conversationService) StoreDisplayName(ctx context.Context, conv *model.Conversation, name string) error {
	if err := s.convRepo.UpdateDisplayName(conv.ID, name); err != nil {
		return fmt.Errorf("failed to store display name: %w", err)
	}
	conv.DisplayName = &name

	if err := s.prefRepo.Set(ctx, conv.SessionID, repository.UserPreference{
		DisplayName:     name,
		LastInteraction: time.Now(),
	}); err != nil {
		// 偏好是冗余副本，失败只记录
		log.Warnf("[Conversation] 写入会话偏好失败, session=%s: %v", conv.SessionID, err)
	}
	return nil
}

// MarkNamePrompted 记录该对话已经请求过姓名，保证一个生命周期最多一次。
func (s *conversationService) MarkNamePrompted(ctx context.Context, conv *model.Conversation) error {
	if err := s.convRepo.MarkNamePrompted(conv.ID); err != nil {
		return fmt.Errorf("failed to mark name prompted: %w", err)
	}
	conv.NamePrompted = true
	return nil
}
