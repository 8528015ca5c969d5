// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"nova-chat-go/internal/model"
	"nova-chat-go/internal/service"
	"nova-chat-go/pkg/log"
	"nova-chat-go/pkg/token"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理聊天请求（HTTP 与 WebSocket 两个入口）。
type ChatHandler struct {
	chatService    service.ChatService
	sessionManager *token.SessionManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, sessionManager *token.SessionManager) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		sessionManager: sessionManager,
	}
}

// ChatRequest 定义了聊天 API 的请求体结构。
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	SessionID      string `json:"sessionId" binding:"required"`
	Mode           string `json:"mode"`
	JournalContext string `json:"journalContext"`
}

// Chat 处理一次入站聊天调用。
// success=false 仅用于结构性无效的输入；后端失败在编排器内部被吸收。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "message 和 sessionId 不能为空",
		})
		return
	}
	if req.Mode != "" && !model.ValidMode(req.Mode) {
		log.Warnf("Chat: 不支持的 mode: %s", req.Mode)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "不支持的 mode，可选值: chill / full-power / journal / auto",
		})
		return
	}

	result, err := h.chatService.Respond(c.Request.Context(), service.ChatRequest{
		Message:        req.Message,
		SessionID:      req.SessionID,
		Mode:           req.Mode,
		JournalContext: req.JournalContext,
	})
	if err != nil {
		// 只有对话存储完全不可用才会走到这里
		log.Errorf("Chat: 应答链路失败, session=%s: %v", req.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "服务暂时不可用，请稍后重试",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"response":         result.Response,
		"mode":             result.Mode,
		"processingTimeMs": result.ProcessingTime,
		"sourceUsed":       result.SourceUsed,
	})
}

// GetWebsocketToken 为给定会话签发一个短期 WebSocket 连接令牌。
func (h *ChatHandler) GetWebsocketToken(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "sessionId 不能为空", "data": nil})
		return
	}
	wsToken, err := h.sessionManager.Issue(sessionID)
	if err != nil {
		log.Error("签发 WebSocket 令牌失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "签发令牌失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"token": wsToken}})
}

// wsInbound 是 WebSocket 上行消息的结构。
type wsInbound struct {
	Message        string `json:"message"`
	Mode           string `json:"mode"`
	JournalContext string `json:"journalContext"`
}

// HandleWS 处理一个传入的 WebSocket 连接：逐条读取消息并回写编排结果。
func (h *ChatHandler) HandleWS(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.sessionManager.Verify(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立, session=%s", claims.SessionID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var inbound wsInbound
		if err := json.Unmarshal(raw, &inbound); err != nil || inbound.Message == "" {
			// 非 JSON 上行按纯文本消息处理
			inbound = wsInbound{Message: string(raw)}
		}
		if inbound.Message == "" {
			continue
		}

		result, err := h.chatService.Respond(c.Request.Context(), service.ChatRequest{
			Message:        inbound.Message,
			SessionID:      claims.SessionID,
			Mode:           inbound.Mode,
			JournalContext: inbound.JournalContext,
		})
		if err != nil {
			log.Errorf("处理 WebSocket 消息失败: %v", err)
			errResp := map[string]interface{}{"success": false, "error": "服务暂时不可用，请稍后重试"}
			b, _ := json.Marshal(errResp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			continue
		}

		payload := map[string]interface{}{
			"success":          true,
			"response":         result.Response,
			"mode":             result.Mode,
			"processingTimeMs": result.ProcessingTime,
			"sourceUsed":       result.SourceUsed,
		}
		b, _ := json.Marshal(payload)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Warnf("WebSocket 回写失败: %v", err)
			break
		}
	}
}
