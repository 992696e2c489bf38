package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dialtimer/backend/internal/infrastructure/config"
	applog "github.com/dialtimer/backend/internal/infrastructure/log"
	"github.com/dialtimer/backend/internal/infrastructure/singleton"
	"github.com/dialtimer/backend/internal/wire"
)

func main() {
	// .env 只用于本地开发，不存在时忽略
	envErr := godotenv.Load()

	// 初始化日志系统
	applog.Init(nil)
	defer applog.Close()
	logger := applog.GetLogger()
	if envErr != nil {
		logger.Debug("No .env file loaded", "error", envErr)
	}

	if err := os.MkdirAll(config.GetDataDir(), 0o755); err != nil {
		logger.Error("Failed to create data directory",
			"path", config.GetDataDir(),
			"error", err,
		)
		os.Exit(1)
	}

	// 加载配置获取端口
	cfg, err := config.ProvideConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 单例锁检查：获取端口，成功后由 HTTP 服务器直接使用该 listener
	listener, err := singleton.CheckAndLock(cfg.Server.HTTPPort)
	if err != nil {
		log.Fatalf("单例锁检查失败: %v", err)
	}
	if listener == nil {
		// 已有实例运行，直接退出
		log.Println("检测到已有实例在运行，当前进程退出")
		os.Exit(0)
	}

	// Wire 自动生成的初始化函数
	app, cleanup, err := wire.InitializeAll()
	if err != nil {
		_ = listener.Close()
		logger.Error("Failed to initialize application",
			"error", err,
		)
		os.Exit(1)
	}
	defer cleanup()

	// 启动所有服务
	if err := app.Start(listener); err != nil {
		logger.Error("Failed to start application",
			"error", err,
		)
		os.Exit(1)
	}

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Received signal", "signal", sig.String())
	case err := <-app.ServeErr():
		logger.Error("HTTP server failed", "error", err)
	}

	logger.Info("Shutting down application...")
	if err := app.Stop(); err != nil {
		logger.Error("Error during application shutdown",
			"error", err,
		)
	}
	logger.Info("Application stopped")
}
