package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"nova-chat-go/internal/service"
	"nova-chat-go/pkg/log"
)

// SearchHandler 结构体定义了消息检索相关的处理器。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchMessages 是处理消息全文检索请求的 Gin 处理函数。
// 检索范围限定为请求方自己的会话。
func (h *SearchHandler) SearchMessages(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		log.Warnf("[SearchHandler] 检索请求失败: query 参数为空")
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数"})
		return
	}

	topK, err := strconv.Atoi(c.DefaultQuery("topK", "10"))
	if err != nil || topK <= 0 {
		topK = 10
	}

	sessionID := c.MustGet("sessionId").(string)

	results, err := h.searchService.SearchMessages(c.Request.Context(), sessionID, query, topK)
	if err != nil {
		log.Errorf("[SearchHandler] 消息检索服务返回错误, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "搜索失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": results, "message": "success"})
}
