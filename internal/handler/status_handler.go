package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nova-chat-go/internal/router"
)

// StatusHandler 暴露本地推理后端的能力快照，供前端状态面板使用。
type StatusHandler struct {
	prober router.Prober
}

// NewStatusHandler 创建一个新的 StatusHandler 实例。
func NewStatusHandler(prober router.Prober) *StatusHandler {
	return &StatusHandler{prober: prober}
}

// GetStatus 执行一次实时探测并返回快照。
func (h *StatusHandler) GetStatus(c *gin.Context) {
	snapshot := h.prober.Probe(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    snapshot,
	})
}
