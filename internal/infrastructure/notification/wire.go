package notification

import (
	"github.com/google/wire"

	"github.com/dialtimer/backend/internal/domain/notification"
	"github.com/dialtimer/backend/internal/infrastructure/config"
)

// ProviderSet 通知基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideMemoryRepository,
	NewWebSocketPusher,
	// 接口绑定：domain.Repository -> infrastructure.Repository
	wire.Bind(
		new(notification.Repository),
		new(*MemoryRepository),
	),
)

// ProvideMemoryRepository 按配置的历史长度创建仓储
func ProvideMemoryRepository(cfg *config.Config) *MemoryRepository {
	return NewMemoryRepository(cfg.Timer.NotificationHistory)
}
