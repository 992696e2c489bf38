package storage

import (
	"github.com/google/wire"

	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideSettingsStore, // 计时设置存储
)

// ProvideSettingsStore 提供计时设置存储
// SQLite 无法打开时回退到内存存储，设置只在本次运行内有效
func ProvideSettingsStore(cfg *config.Config) (domainTimer.SettingsStore, func(), error) {
	logger := log.NewModuleLogger("storage", "settings")
	dbPath := cfg.DatabasePath()

	db, err := OpenDB(dbPath)
	if err != nil {
		logger.Warn("Falling back to in-memory settings store",
			"path", dbPath,
			"error", err,
		)
		return NewMemoryStore(), func() {}, nil
	}

	logger.Info("Settings store opened", "path", dbPath)
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
	return NewSQLiteSettingsStore(db, domainTimer.PrefsNamespace), cleanup, nil
}
