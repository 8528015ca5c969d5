package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-chat-go/internal/model"
)

// fakeConversationService 是 service.ConversationService 的测试替身，
// 只有历史读取是真实现，其余方法不会被处理器触达。
type fakeConversationService struct {
	history   []model.Message
	lastLimit int
}

func (f *fakeConversationService) GetOrCreate(ctx context.Context, sessionID string) (*model.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationService) AppendMessage(ctx context.Context, conversationID, role, content string, latencyMs *int64, meta model.MessageMeta) error {
	return nil
}

func (f *fakeConversationService) RecentHistory(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	return f.history, nil
}

func (f *fakeConversationService) SessionHistory(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	f.lastLimit = limit
	return f.history, nil
}

func (f *fakeConversationService) GetDisplayName(ctx context.Context, conv *model.Conversation) string {
	return ""
}

func (f *fakeConversationService) StoreDisplayName(ctx context.Context, conv *model.Conversation, name string) error {
	return nil
}

func (f *fakeConversationService) MarkNamePrompted(ctx context.Context, conv *model.Conversation) error {
	return nil
}

func newHistoryRouter(svc *fakeConversationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/conversations", func(c *gin.Context) {
		c.Set("sessionId", "session-1")
		NewConversationHandler(svc).GetHistory(c)
	})
	return r
}

func TestGetHistoryFormatsTimestamps(t *testing.T) {
	created := time.Date(2026, 8, 30, 9, 15, 0, 0, time.Local)
	svc := &fakeConversationService{history: []model.Message{
		{ID: 1, Role: model.RoleUser, Content: "hi", Mode: model.ModeAuto, CreatedAt: created},
	}}
	r := newHistoryRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	// 时间序列化为本地时间格式，而不是 RFC3339
	assert.Contains(t, w.Body.String(), `"createdAt":"2026-08-30 09:15:00"`)
	assert.Contains(t, w.Body.String(), `"content":"hi"`)
}

func TestGetHistoryDefaultsLimit(t *testing.T) {
	svc := &fakeConversationService{}
	r := newHistoryRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations?limit=junk", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, svc.lastLimit)
	// 空历史返回空数组而不是 null
	assert.Contains(t, w.Body.String(), `"data":[]`)
}
