package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"nova-chat-go/pkg/log"
	"nova-chat-go/pkg/token"
)

// SessionHandler 负责会话令牌的签发。
type SessionHandler struct {
	sessionManager *token.SessionManager
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(sessionManager *token.SessionManager) *SessionHandler {
	return &SessionHandler{sessionManager: sessionManager}
}

// CreateSessionRequest 定义了会话创建 API 的请求体结构。
// sessionId 可选：客户端可以续用已有标识，否则由服务端生成。
type CreateSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// Create 签发一个新的会话令牌。
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	// 请求体可以为空
	_ = c.ShouldBindJSON(&req)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sessionToken, err := h.sessionManager.Issue(sessionID)
	if err != nil {
		log.Error("签发会话令牌失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "签发会话令牌失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"sessionId": sessionID, "token": sessionToken},
	})
}
