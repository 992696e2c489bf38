package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appTimer "github.com/dialtimer/backend/internal/application/timer"
	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/interfaces/http/response"
)

// TimerHandler 计时器 API 处理器
type TimerHandler struct {
	coordinator *appTimer.Coordinator
}

// NewTimerHandler 创建计时器处理器
func NewTimerHandler(coordinator *appTimer.Coordinator) *TimerHandler {
	return &TimerHandler{coordinator: coordinator}
}

// IntentResult 意图处理结果
// 非法的状态转换不是错误，Accepted 为 false 并返回未改变的状态
type IntentResult struct {
	Accepted bool                    `json:"accepted"`
	State    domainTimer.TimerState `json:"state"`
}

// SetTimeRequest 设置时长请求
type SetTimeRequest struct {
	TimeMs *int64 `json:"time_ms" binding:"required"`
}

// SetAngleRequest 设置角度请求
type SetAngleRequest struct {
	Angle *float64 `json:"angle" binding:"required"`
}

// DragRequest 拖拽坐标请求
type DragRequest struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// SuggestionDTO 常用时长
type SuggestionDTO struct {
	Minutes int     `json:"minutes"`
	TimeMs  int64   `json:"time_ms"`
	Angle   float64 `json:"angle"`
	Label   string  `json:"label"`
}

// GetState 获取当前计时状态
func (h *TimerHandler) GetState(c *gin.Context) {
	response.Success(c, h.coordinator.State())
}

// GetSettings 获取上次保存的时长和角度
func (h *TimerHandler) GetSettings(c *gin.Context) {
	response.Success(c, h.coordinator.SavedSettings())
}

// GetRunner 获取后台计时器快照
func (h *TimerHandler) GetRunner(c *gin.Context) {
	response.Success(c, h.coordinator.RunnerSnapshot())
}

// GetSuggestions 常用时长建议
func (h *TimerHandler) GetSuggestions(c *gin.Context) {
	minutes := domainTimer.TimeSuggestions()
	result := make([]SuggestionDTO, 0, len(minutes))
	for _, m := range minutes {
		ms := domainTimer.MinutesToMs(float64(m))
		result = append(result, SuggestionDTO{
			Minutes: m,
			TimeMs:  ms,
			Angle:   domainTimer.TimeToAngle(ms),
			Label:   domainTimer.FormatTimeDetailed(ms),
		})
	}
	response.Success(c, result)
}

// SetTime 设置时长（毫秒），越界值被截断
func (h *TimerHandler) SetTime(c *gin.Context) {
	var req SetTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParam, "参数错误", err.Error())
		return
	}
	h.respond(c, h.coordinator.SetTime(*req.TimeMs))
}

// SetAngle 设置表盘角度
func (h *TimerHandler) SetAngle(c *gin.Context) {
	var req SetAngleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParam, "参数错误", err.Error())
		return
	}
	h.respond(c, h.coordinator.SetAngle(*req.Angle))
}

// Drag 根据触摸坐标设置角度
func (h *TimerHandler) Drag(c *gin.Context) {
	var req DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParam, "参数错误", err.Error())
		return
	}
	angle := domainTimer.CoordinateToAngle(req.X, req.Y, req.CenterX, req.CenterY)
	h.respond(c, h.coordinator.SetAngle(angle))
}

// Start 开始或继续计时
func (h *TimerHandler) Start(c *gin.Context) {
	h.respond(c, h.coordinator.Start())
}

// Pause 暂停计时
func (h *TimerHandler) Pause(c *gin.Context) {
	h.respond(c, h.coordinator.Pause())
}

// Stop 停止计时
func (h *TimerHandler) Stop(c *gin.Context) {
	h.respond(c, h.coordinator.Stop())
}

// Reset 重置到设置的时长
func (h *TimerHandler) Reset(c *gin.Context) {
	h.respond(c, h.coordinator.Reset())
}

// ClearData 清除保存的设置并回到默认状态
func (h *TimerHandler) ClearData(c *gin.Context) {
	h.coordinator.ClearData()
	h.respond(c, true)
}

// Intent 通用意图入口，与 WebSocket 消息格式一致
func (h *TimerHandler) Intent(c *gin.Context) {
	var intent domainTimer.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParam, "参数错误", err.Error())
		return
	}

	accepted, err := h.coordinator.Handle(intent)
	if err != nil {
		code := response.CodeInvalidParam
		if errors.Is(err, domainTimer.ErrUnknownAction) {
			code = response.CodeUnknownAction
		}
		response.ErrorWithDetail(c, http.StatusBadRequest, code, "无效的操作", err.Error())
		return
	}
	h.respond(c, accepted)
}

func (h *TimerHandler) respond(c *gin.Context, accepted bool) {
	response.Success(c, IntentResult{
		Accepted: accepted,
		State:    h.coordinator.State(),
	})
}
