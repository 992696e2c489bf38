package lifecycle

import (
	"github.com/google/wire"

	appTimer "github.com/dialtimer/backend/internal/application/timer"
)

// ProviderSet Lifecycle ProviderSet
var ProviderSet = wire.NewSet(
	NewPresenceManager,
	wire.Bind(new(Hooks), new(*appTimer.Coordinator)),
)
