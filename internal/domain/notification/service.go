package notification

import (
	"errors"

	"github.com/dialtimer/backend/internal/domain/timer"
)

var (
	// ErrInvalidKind 无效的通知类型
	ErrInvalidKind = errors.New("invalid notification kind")
	// ErrInvalidTitle 无效的标题
	ErrInvalidTitle = errors.New("invalid title")
)

// 完成通知文案
const (
	FinishedTitle   = "计时完成！"
	FinishedMessage = "倒计时已结束"
)

// Service 领域服务（纯业务逻辑）
type Service struct {
	// 不依赖任何基础设施，只依赖领域概念
}

// NewService 创建领域服务
func NewService() *Service {
	return &Service{}
}

// Validate 验证通知内容（领域规则）
func (s *Service) Validate(n *Notification) error {
	if !n.Kind.IsValid() {
		return ErrInvalidKind
	}
	if n.Title == "" && n.Kind != KindDismiss && n.Kind != KindVibrate {
		return ErrInvalidTitle
	}
	return nil
}

// ProgressText 计时进度通知的标题和正文
func (s *Service) ProgressText(remainingMs int64, status timer.Status) (title, message string) {
	if remainingMs < 0 {
		remainingMs = 0
	}
	statusText := "计时中"
	if status == timer.StatusPaused {
		statusText = "已暂停"
	}
	return "倒计时 - " + statusText, "剩余时间: " + timer.FormatTime(remainingMs)
}

// IsOngoing 计时中或暂停时进度通知常驻
func (s *Service) IsOngoing(status timer.Status) bool {
	return status == timer.StatusRunning || status == timer.StatusPaused
}
