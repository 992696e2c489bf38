package mcp

import (
	"context"
	"fmt"
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appTimer "github.com/dialtimer/backend/internal/application/timer"
	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
)

// TimerStateInput 查询计时状态工具输入（空输入）
type TimerStateInput struct{}

// TimerStateView 计时状态
type TimerStateView struct {
	Status          string  `json:"status" jsonschema:"计时状态：idle/running/paused/finished"`
	TotalTimeMs     int64   `json:"total_time_ms" jsonschema:"总时长（毫秒）"`
	RemainingTimeMs int64   `json:"remaining_time_ms" jsonschema:"剩余时长（毫秒）"`
	Progress        float64 `json:"progress" jsonschema:"进度，0 到 1"`
	Angle           float64 `json:"angle" jsonschema:"表盘拖拽点角度"`
	KeepScreenOn    bool    `json:"keep_screen_on" jsonschema:"是否保持屏幕常亮"`
	Remaining       string  `json:"remaining" jsonschema:"剩余时间，格式 分:秒"`
	Total           string  `json:"total" jsonschema:"总时长，格式 分:秒"`
}

// TimerStateOutput 查询计时状态工具输出
type TimerStateOutput struct {
	State  TimerStateView    `json:"state" jsonschema:"计时状态"`
	Runner appTimer.Snapshot `json:"runner" jsonschema:"后台计时器快照"`
}

// SetTimeInput 设置时长工具输入
type SetTimeInput struct {
	TimeMs  *int64   `json:"time_ms,omitempty" jsonschema:"时长（毫秒），范围 0 到 2700000"`
	Minutes *float64 `json:"minutes,omitempty" jsonschema:"时长（分钟），未提供 time_ms 时使用"`
}

// SetAngleInput 设置角度工具输入
type SetAngleInput struct {
	Angle float64 `json:"angle" jsonschema:"表盘角度（度）"`
}

// ControlInput 开始/暂停/停止/重置工具输入（空输入）
type ControlInput struct{}

// IntentOutput 意图执行结果
type IntentOutput struct {
	Accepted bool           `json:"accepted" jsonschema:"意图是否被接受"`
	State    TimerStateView `json:"state" jsonschema:"执行后的计时状态"`
}

func (s *MCPServer) getTimerStateTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TimerStateInput,
) (*mcp.CallToolResult, TimerStateOutput, error) {
	return nil, TimerStateOutput{
		State:  toStateView(s.coordinator.State()),
		Runner: s.coordinator.RunnerSnapshot(),
	}, nil
}

func (s *MCPServer) setTimerTimeTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SetTimeInput,
) (*mcp.CallToolResult, IntentOutput, error) {
	var timeMs int64
	switch {
	case input.TimeMs != nil:
		timeMs = *input.TimeMs
	case input.Minutes != nil:
		minutes := *input.Minutes
		timeMs = domainTimer.MinutesToMs(minutes)
		if math.IsNaN(minutes) || minutes < 0 || minutes > domainTimer.MaxTimeMinutes {
			s.logger.Warn("Minutes out of range, clamped", "minutes", minutes, "time_ms", timeMs)
		}
	default:
		return nil, IntentOutput{}, fmt.Errorf("either time_ms or minutes is required")
	}
	return s.handleIntent(domainTimer.Intent{Action: domainTimer.ActionSetTime, TimeMs: &timeMs})
}

func (s *MCPServer) setTimerAngleTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SetAngleInput,
) (*mcp.CallToolResult, IntentOutput, error) {
	angle := input.Angle
	return s.handleIntent(domainTimer.Intent{Action: domainTimer.ActionSetAngle, Angle: &angle})
}

func (s *MCPServer) startTimerTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ControlInput,
) (*mcp.CallToolResult, IntentOutput, error) {
	return s.handleIntent(domainTimer.Intent{Action: domainTimer.ActionStart})
}

func (s *MCPServer) pauseTimerTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ControlInput,
) (*mcp.CallToolResult, IntentOutput, error) {
	return s.handleIntent(domainTimer.Intent{Action: domainTimer.ActionPause})
}

func (s *MCPServer) stopTimerTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ControlInput,
) (*mcp.CallToolResult, IntentOutput, error) {
	return s.handleIntent(domainTimer.Intent{Action: domainTimer.ActionStop})
}

func (s *MCPServer) resetTimerTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ControlInput,
) (*mcp.CallToolResult, IntentOutput, error) {
	return s.handleIntent(domainTimer.Intent{Action: domainTimer.ActionReset})
}

// handleIntent 执行意图，被拒绝的意图不是错误
func (s *MCPServer) handleIntent(intent domainTimer.Intent) (*mcp.CallToolResult, IntentOutput, error) {
	accepted, err := s.coordinator.Handle(intent)
	if err != nil {
		return nil, IntentOutput{}, err
	}
	if !accepted {
		s.logger.Debug("Intent rejected", "action", intent.Action)
	}
	return nil, IntentOutput{
		Accepted: accepted,
		State:    toStateView(s.coordinator.State()),
	}, nil
}

func toStateView(state domainTimer.TimerState) TimerStateView {
	return TimerStateView{
		Status:          state.Status.String(),
		TotalTimeMs:     state.TotalTimeMs,
		RemainingTimeMs: state.RemainingTimeMs,
		Progress:        state.Progress,
		Angle:           state.Angle,
		KeepScreenOn:    state.KeepScreenOn,
		Remaining:       domainTimer.FormatTime(state.RemainingTimeMs),
		Total:           domainTimer.FormatTime(state.TotalTimeMs),
	}
}
