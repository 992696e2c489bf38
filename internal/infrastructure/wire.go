package infrastructure

import (
	"github.com/google/wire"

	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/discovery"
	"github.com/dialtimer/backend/internal/infrastructure/notification"
	"github.com/dialtimer/backend/internal/infrastructure/storage"
	"github.com/dialtimer/backend/internal/infrastructure/watcher"
	"github.com/dialtimer/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	clock.ProviderSet,
	websocket.ProviderSet,
	notification.ProviderSet,
	storage.ProviderSet,
	watcher.ProviderSet,
	discovery.ProviderSet,
)
