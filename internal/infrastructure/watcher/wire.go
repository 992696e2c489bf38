package watcher

import (
	"github.com/dialtimer/backend/internal/domain/events"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet 监听与事件总线 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	ProvideConfigWatcher,
)

// ProvideEventBus 提供事件总线实例
func ProvideEventBus() events.EventBus {
	return NewEventBus()
}

// ProvideConfigWatcher 提供数据目录下配置文件的监听器
func ProvideConfigWatcher(eventBus events.EventBus) (*ConfigWatcher, error) {
	return NewConfigWatcher(config.FilePath(), DefaultDebounceDelay, eventBus)
}
