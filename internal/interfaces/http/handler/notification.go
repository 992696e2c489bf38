package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dialtimer/backend/internal/application/notification"
	"github.com/dialtimer/backend/internal/interfaces/http/response"
)

// defaultNotificationLimit 默认返回的通知条数
const defaultNotificationLimit = 20

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service *notification.Service
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(service *notification.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List 最近的通知，按时间倒序
func (h *NotificationHandler) List(c *gin.Context) {
	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, http.StatusBadRequest, response.CodeInvalidParam, "limit 必须为正整数")
			return
		}
		limit = n
	}

	result, err := h.service.Recent(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "查询失败")
		return
	}

	response.Success(c, result)
}
