package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dialtimer/backend/internal/application/lifecycle"
	domainLifecycle "github.com/dialtimer/backend/internal/domain/lifecycle"
	"github.com/dialtimer/backend/internal/interfaces/http/response"
)

// LifecycleHandler 生命周期管理 API 处理器
type LifecycleHandler struct {
	presence *lifecycle.PresenceManager
}

// NewLifecycleHandler 创建生命周期处理器
func NewLifecycleHandler(presence *lifecycle.PresenceManager) *LifecycleHandler {
	return &LifecycleHandler{
		presence: presence,
	}
}

// ForegroundResult 回到前台的结果
type ForegroundResult struct {
	// Resynced 对账时是否采用了后台计时器的剩余时间
	Resynced bool                           `json:"resynced"`
	Status   *domainLifecycle.LifecycleStatus `json:"status"`
}

// Heartbeat 处理展示端心跳
func (h *LifecycleHandler) Heartbeat(c *gin.Context) {
	var req domainLifecycle.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidParam, err.Error())
		return
	}

	response.Success(c, h.presence.Heartbeat(req.ClientID, req.Name))
}

// Background 展示端切到后台
func (h *LifecycleHandler) Background(c *gin.Context) {
	h.presence.EnterBackground()
	response.Success(c, h.presence.Status())
}

// Foreground 展示端回到前台，触发对账
func (h *LifecycleHandler) Foreground(c *gin.Context) {
	resynced := h.presence.EnterForeground()
	response.Success(c, ForegroundResult{
		Resynced: resynced,
		Status:   h.presence.Status(),
	})
}

// GetStatus 获取生命周期状态
func (h *LifecycleHandler) GetStatus(c *gin.Context) {
	response.Success(c, h.presence.Status())
}
