package timer

import "time"

// Status 计时器状态
type Status string

const (
	// StatusIdle 空闲状态，等待设置时间
	StatusIdle Status = "idle"
	// StatusRunning 正在计时
	StatusRunning Status = "running"
	// StatusPaused 暂停状态
	StatusPaused Status = "paused"
	// StatusFinished 计时完成
	StatusFinished Status = "finished"
)

// String 实现 fmt.Stringer
func (s Status) String() string {
	return string(s)
}

// TimerState 计时器状态快照（值类型，不可变）
// Progress 和 Angle 只由状态机根据其他字段重新计算
type TimerState struct {
	Status          Status    `json:"status"`
	TotalTimeMs     int64     `json:"total_time_ms"`
	RemainingTimeMs int64     `json:"remaining_time_ms"`
	Progress        float64   `json:"progress"`
	Angle           float64   `json:"angle"`
	KeepScreenOn    bool      `json:"keep_screen_on"`
	LastUpdateTime  time.Time `json:"last_update_time"`
}

// ElapsedTimeMs 已经过的时间（毫秒）
func (s TimerState) ElapsedTimeMs() int64 {
	return s.TotalTimeMs - s.RemainingTimeMs
}

// TotalMinutes 总时间（分钟）
func (s TimerState) TotalMinutes() float64 {
	return MsToMinutes(s.TotalTimeMs)
}

// RemainingMinutes 剩余时间（分钟）
func (s TimerState) RemainingMinutes() float64 {
	return MsToMinutes(s.RemainingTimeMs)
}

// IsActive 是否正在计时
func (s TimerState) IsActive() bool {
	return s.Status == StatusRunning
}

// CanStart 是否可以开始计时
func (s TimerState) CanStart() bool {
	return s.Status == StatusIdle || s.Status == StatusPaused
}

// CanPause 是否可以暂停
func (s TimerState) CanPause() bool {
	return s.Status == StatusRunning
}

// CanStop 是否可以停止
func (s TimerState) CanStop() bool {
	return s.Status == StatusRunning || s.Status == StatusPaused
}

// idleState 构造给定总时长的空闲状态
func idleState(totalMs int64, angle float64) TimerState {
	return TimerState{
		Status:          StatusIdle,
		TotalTimeMs:     totalMs,
		RemainingTimeMs: totalMs,
		Progress:        0,
		Angle:           angle,
	}
}
