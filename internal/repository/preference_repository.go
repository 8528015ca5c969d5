package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 用户偏好在 Redis 中的保留时长。
const preferenceTTL = 30 * 24 * time.Hour

// UserPreference 是按会话维度存储的个性化偏好。
type UserPreference struct {
	DisplayName     string    `json:"displayName"`
	LastInteraction time.Time `json:"lastInteraction"`
}

// PreferenceRepository 定义了用户偏好的存取接口。
type PreferenceRepository interface {
	Get(ctx context.Context, sessionID string) (*UserPreference, error)
	Set(ctx context.Context, sessionID string, pref UserPreference) error
	Touch(ctx context.Context, sessionID string) error
}

type redisPreferenceRepository struct {
	redisClient *redis.Client
}

// NewPreferenceRepository 创建一个新的 PreferenceRepository 实例。
func NewPreferenceRepository(redisClient *redis.Client) PreferenceRepository {
	return &redisPreferenceRepository{redisClient: redisClient}
}

func preferenceKey(sessionID string) string {
	return fmt.Sprintf("session:%s:preference", sessionID)
}

// Get 读取会话偏好；不存在时返回 (nil, nil)。
func (r *redisPreferenceRepository) Get(ctx context.Context, sessionID string) (*UserPreference, error) {
	jsonData, err := r.redisClient.Get(ctx, preferenceKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user preference: %w", err)
	}
	var pref UserPreference
	if err := json.Unmarshal([]byte(jsonData), &pref); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user preference: %w", err)
	}
	return &pref, nil
}

// Set 写入会话偏好。
func (r *redisPreferenceRepository) Set(ctx context.Context, sessionID string, pref UserPreference) error {
	jsonData, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("failed to marshal user preference: %w", err)
	}
	if err := r.redisClient.Set(ctx, preferenceKey(sessionID), jsonData, preferenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to set user preference: %w", err)
	}
	return nil
}

// Touch 只刷新最近交互时间，显示名保持不变。
func (r *redisPreferenceRepository) Touch(ctx context.Context, sessionID string) error {
	pref, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if pref == nil {
		pref = &UserPreference{}
	}
	pref.LastInteraction = time.Now()
	return r.Set(ctx, sessionID, *pref)
}
