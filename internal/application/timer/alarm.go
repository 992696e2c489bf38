package timer

import (
	"time"

	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
)

// Alarm 通知/提醒侧通道
// 实现方的错误只会被记录，不影响计时状态
type Alarm interface {
	// ShowProgress 更新计时进度显示
	ShowProgress(totalMs, remainingMs int64, status domainTimer.Status) error
	// ShowFinished 显示计时完成提醒
	ShowFinished(totalMs int64) error
	// Vibrate 触发一次振动
	Vibrate(d time.Duration) error
	// Dismiss 清除进度显示
	Dismiss() error
}

type noopAlarm struct{}

func (noopAlarm) ShowProgress(int64, int64, domainTimer.Status) error { return nil }
func (noopAlarm) ShowFinished(int64) error                            { return nil }
func (noopAlarm) Vibrate(time.Duration) error                         { return nil }
func (noopAlarm) Dismiss() error                                      { return nil }
