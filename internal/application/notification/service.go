package notification

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appTimer "github.com/dialtimer/backend/internal/application/timer"
	"github.com/dialtimer/backend/internal/domain/notification"
	"github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// Service 应用服务（用例编排），实现计时器的提醒侧通道
type Service struct {
	domainRepo notification.Repository
	domainSvc  *notification.Service
	pusher     Pusher
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService 创建应用服务
func NewService(
	domainRepo notification.Repository,
	domainSvc *notification.Service,
	pusher Pusher,
	clk clock.Clock,
) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		domainRepo: domainRepo,
		domainSvc:  domainSvc,
		pusher:     pusher,
		clock:      clk,
		logger:     log.NewModuleLogger("notification", "service"),
	}
}

// ShowProgress 更新计时进度通知
func (s *Service) ShowProgress(totalMs, remainingMs int64, status timer.Status) error {
	if remainingMs < 0 {
		remainingMs = 0
	}
	title, message := s.domainSvc.ProgressText(remainingMs, status)
	return s.createAndPush(&notification.Notification{
		Kind:            notification.KindProgress,
		Title:           title,
		Message:         message,
		TotalTimeMs:     totalMs,
		RemainingTimeMs: remainingMs,
		ElapsedTimeMs:   totalMs - remainingMs,
		Ongoing:         s.domainSvc.IsOngoing(status),
	})
}

// ShowFinished 显示计时完成通知
func (s *Service) ShowFinished(totalMs int64) error {
	return s.createAndPush(&notification.Notification{
		Kind:          notification.KindFinished,
		Title:         notification.FinishedTitle,
		Message:       notification.FinishedMessage,
		TotalTimeMs:   totalMs,
		ElapsedTimeMs: totalMs,
	})
}

// Vibrate 请求展示端振动
func (s *Service) Vibrate(d time.Duration) error {
	return s.createAndPush(&notification.Notification{
		Kind:        notification.KindVibrate,
		VibrationMs: d.Milliseconds(),
	})
}

// Dismiss 清除进度通知
func (s *Service) Dismiss() error {
	return s.createAndPush(&notification.Notification{
		Kind: notification.KindDismiss,
	})
}

// Recent 最近的通知，按时间倒序
func (s *Service) Recent(limit int) ([]*NotificationDTO, error) {
	items, err := s.domainRepo.FindRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	result := make([]*NotificationDTO, 0, len(items))
	for _, n := range items {
		result = append(result, toDTO(n))
	}
	return result, nil
}

// createAndPush 创建并推送通知（用例）
func (s *Service) createAndPush(notif *notification.Notification) error {
	// 1. 补全实体
	notif.ID = uuid.New().String()
	notif.CreatedAt = s.clock.Now()

	// 2. 使用领域服务验证
	if err := s.domainSvc.Validate(notif); err != nil {
		return err
	}

	// 3. 保存到仓储
	if err := s.domainRepo.Save(notif); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	// 4. 推送到展示端（推送失败不影响保存）
	if s.pusher != nil {
		if err := s.pusher.Push(toDTO(notif)); err != nil {
			s.logger.Debug("Failed to push notification",
				"kind", notif.Kind,
				"error", err,
			)
		}
	}
	return nil
}

// toDTO 转换为 DTO
func toDTO(n *notification.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:              n.ID,
		Kind:            string(n.Kind),
		Title:           n.Title,
		Message:         n.Message,
		TotalTimeMs:     n.TotalTimeMs,
		RemainingTimeMs: n.RemainingTimeMs,
		ElapsedTimeMs:   n.ElapsedTimeMs,
		Ongoing:         n.Ongoing,
		VibrationMs:     n.VibrationMs,
		CreatedAt:       n.CreatedAt.Format(time.RFC3339),
	}
}

// 编译时检查接口实现
var _ appTimer.Alarm = (*Service)(nil)
