// Package events 定义领域事件类型和接口
// 用于系统内部的事件驱动通信
package events

import "time"

// 计时器相关事件类型
const (
	// TimerStarted 开始或继续计时
	TimerStarted EventType = "timer.started"
	// TimerPaused 暂停计时
	TimerPaused EventType = "timer.paused"
	// TimerStopped 用户停止或重置计时
	TimerStopped EventType = "timer.stopped"
	// TimerFinished 倒计时自然完成
	TimerFinished EventType = "timer.finished"
	// TimerResynced 与后台计时器对账后采用了后台的剩余时间
	TimerResynced EventType = "timer.resynced"
	// TimerDataCleared 清除了保存的设置
	TimerDataCleared EventType = "timer.data_cleared"
)

// 前后台切换事件类型
const (
	// LifecycleBackground 所有展示端断开
	LifecycleBackground EventType = "lifecycle.background"
	// LifecycleForeground 展示端重新连接
	LifecycleForeground EventType = "lifecycle.foreground"
)

// ConfigChanged 配置文件变更事件类型
const ConfigChanged EventType = "config.changed"

// EventType 事件类型标识
type EventType string

// Event 领域事件接口
// 所有事件类型都必须实现此接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
}
