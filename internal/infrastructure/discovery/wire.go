package discovery

import "github.com/google/wire"

// ProviderSet 局域网广播 ProviderSet
var ProviderSet = wire.NewSet(
	NewAdvertiser,
)
