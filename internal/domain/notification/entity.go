package notification

import "time"

// Notification 通知实体
type Notification struct {
	ID      string
	Kind    Kind
	Title   string
	Message string
	// TotalTimeMs 计时总时长
	TotalTimeMs int64
	// RemainingTimeMs 剩余时间，完成通知为 0
	RemainingTimeMs int64
	// ElapsedTimeMs 进度条已走过的时间
	ElapsedTimeMs int64
	// Ongoing 计时中或暂停时常驻
	Ongoing bool
	// VibrationMs 振动时长，仅振动通知有效
	VibrationMs int64
	CreatedAt   time.Time
}

// Kind 通知类型
type Kind string

const (
	// KindProgress 计时进度
	KindProgress Kind = "progress"
	// KindFinished 计时完成
	KindFinished Kind = "finished"
	// KindVibrate 振动
	KindVibrate Kind = "vibrate"
	// KindDismiss 清除进度通知
	KindDismiss Kind = "dismiss"
)

// IsValid 检查通知类型
func (k Kind) IsValid() bool {
	switch k {
	case KindProgress, KindFinished, KindVibrate, KindDismiss:
		return true
	}
	return false
}
