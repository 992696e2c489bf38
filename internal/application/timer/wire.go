package timer

import (
	"github.com/google/wire"

	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// ProviderSet 计时应用层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideStateMachine,
	NewRunner,
	NewScheduler,
	NewBroadcaster,
	NewCoordinator,
	// 注意：Alarm 接口绑定在顶层 wire.go 中处理
)

// ProvideStateMachine 从设置存储恢复状态机，持久化失败只记录日志
func ProvideStateMachine(store domainTimer.SettingsStore, clk clock.Clock) *domainTimer.StateMachine {
	logger := log.NewModuleLogger("timer", "state_machine")
	return domainTimer.NewStateMachine(
		domainTimer.NewPreferences(store),
		domainTimer.WithClock(clk.Now),
		domainTimer.WithPersistErrorHandler(func(err error) {
			logger.Warn("Failed to persist timer settings", "error", err)
		}),
	)
}
