package application

import (
	"github.com/google/wire"

	"github.com/dialtimer/backend/internal/application/lifecycle"
	"github.com/dialtimer/backend/internal/application/notification"
	"github.com/dialtimer/backend/internal/application/timer"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	notification.ProviderSet,
	timer.ProviderSet,
	lifecycle.ProviderSet,
)
