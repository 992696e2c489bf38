package events

import "time"

// TimerEvent 计时会话事件
type TimerEvent struct {
	// EventType 事件类型（started/paused/stopped/finished/resynced/data_cleared）
	EventType EventType
	// SessionID 后台计时会话 ID，空闲时为空
	SessionID string
	// TotalTimeMs 设置的总时长
	TotalTimeMs int64
	// RemainingTimeMs 事件发生时的剩余时间
	RemainingTimeMs int64
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *TimerEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *TimerEvent) Timestamp() time.Time {
	return e.EventTime
}

// LifecycleEvent 前后台切换事件
type LifecycleEvent struct {
	EventType EventType
	// ActiveClients 切换时仍在线的展示端数量
	ActiveClients int
	EventTime     time.Time
}

// Type 实现 Event 接口
func (e *LifecycleEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *LifecycleEvent) Timestamp() time.Time {
	return e.EventTime
}

// ConfigEvent 配置文件变更事件
type ConfigEvent struct {
	// Path 变更的配置文件路径
	Path      string
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *ConfigEvent) Type() EventType {
	return ConfigChanged
}

// Timestamp 实现 Event 接口
func (e *ConfigEvent) Timestamp() time.Time {
	return e.EventTime
}
