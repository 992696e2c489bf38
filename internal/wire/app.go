package wire

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	appLifecycle "github.com/dialtimer/backend/internal/application/lifecycle"
	appTimer "github.com/dialtimer/backend/internal/application/timer"
	"github.com/dialtimer/backend/internal/domain/events"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/discovery"
	applog "github.com/dialtimer/backend/internal/infrastructure/log"
	"github.com/dialtimer/backend/internal/infrastructure/watcher"
	"github.com/dialtimer/backend/internal/infrastructure/websocket"
	"github.com/dialtimer/backend/internal/interfaces"
	"github.com/dialtimer/backend/internal/interfaces/http/handler"
)

// Version 服务版本，通过局域网广播告知展示端
const Version = "0.1.0"

// shutdownTimeout HTTP 服务器优雅关闭的最长等待时间
const shutdownTimeout = 5 * time.Second

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer    *interfaces.HTTPServer
	MCPServer     *interfaces.MCPServer
	cfg           *config.Config
	wsHub         *websocket.Hub
	coordinator   *appTimer.Coordinator
	presence      *appLifecycle.PresenceManager // 展示端在线状态
	streamHandler *handler.StreamHandler
	advertiser    *discovery.Advertiser
	logger        *slog.Logger

	// 配置热更新相关
	eventBus      events.EventBus
	configWatcher *watcher.ConfigWatcher

	unsubscribe []func()
	serveErr    chan error
}

// NewApp 创建应用实例
func NewApp(
	cfg *config.Config,
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	coordinator *appTimer.Coordinator,
	presence *appLifecycle.PresenceManager,
	streamHandler *handler.StreamHandler,
	advertiser *discovery.Advertiser,
	eventBus events.EventBus,
	configWatcher *watcher.ConfigWatcher,
) *App {
	return &App{
		HTTPServer:    httpServer,
		MCPServer:     mcpServer,
		cfg:           cfg,
		wsHub:         wsHub,
		coordinator:   coordinator,
		presence:      presence,
		streamHandler: streamHandler,
		advertiser:    advertiser,
		eventBus:      eventBus,
		configWatcher: configWatcher,
		logger:        applog.NewModuleLogger("app", "main"),
		serveErr:      make(chan error, 1),
	}
}

// Start 启动所有服务，HTTP 服务器在已获取的单例 listener 上提供服务
func (a *App) Start(listener net.Listener) error {
	a.logger.Info("Starting dialtimer backend application")

	// 启动 WebSocket Hub
	a.wsHub.Start()

	// 注册事件订阅者，先于协调器启动，避免丢失首个事件
	a.setupEventSubscribers()

	// 启动计时协调器和展示端在线检测
	a.coordinator.Open()
	a.presence.Start()

	// 配置热更新
	a.configWatcher.OnReload(func(cfg *config.Config) {
		a.coordinator.UpdateConfig(appTimer.ConfigFromSettings(cfg.Timer))
	})
	if err := a.configWatcher.Start(); err != nil {
		// 热更新不可用不影响计时
		a.logger.Error("Failed to start config watcher",
			"path", a.configWatcher.Path(),
			"error", err,
		)
	}

	if err := a.MCPServer.Start(); err != nil {
		a.logger.Error("Failed to start MCP server", "error", err)
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Serve(listener); err != nil {
			a.logger.Error("HTTP server stopped unexpectedly", "error", err)
			a.serveErr <- err
		}
	}()

	a.startDiscovery(listener.Addr().String())

	a.logger.Info("Dialtimer backend application started successfully",
		"addr", listener.Addr().String(),
	)
	return nil
}

// ServeErr HTTP 服务器异常退出时收到错误
func (a *App) ServeErr() <-chan error {
	return a.serveErr
}

// setupEventSubscribers 注册事件订阅者
func (a *App) setupEventSubscribers() {
	// 计时会话事件转发到 /ws/timer 连接
	a.unsubscribe = append(a.unsubscribe,
		a.eventBus.SubscribeMultiple(handler.TimerEventTypes, a.streamHandler),
	)

	a.unsubscribe = append(a.unsubscribe,
		a.eventBus.SubscribeMultiple(
			[]events.EventType{events.LifecycleBackground, events.LifecycleForeground},
			events.HandlerFunc(func(event events.Event) error {
				le, ok := event.(*events.LifecycleEvent)
				if !ok {
					return nil
				}
				a.logger.Debug("Presence phase changed",
					"event", le.EventType,
					"active_clients", le.ActiveClients,
				)
				return nil
			}),
		),
	)
}

// startDiscovery 按配置在局域网广播服务地址
func (a *App) startDiscovery(addr string) {
	if !a.cfg.Discovery.Enabled {
		return
	}

	port, err := discovery.ParsePort(addr)
	if err != nil {
		a.logger.Warn("Cannot advertise service, invalid listen address",
			"addr", addr,
			"error", err,
		)
		return
	}

	info := discovery.BuildServiceInfo(a.cfg.Discovery, port, Version)
	if err := a.advertiser.Start(info); err != nil {
		a.logger.Warn("Failed to start LAN discovery", "error", err)
	}
}

// Stop 停止所有服务，顺序与启动相反
func (a *App) Stop() error {
	a.logger.Info("Stopping dialtimer backend application")

	var errs []error

	a.advertiser.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to stop HTTP server", "error", err)
		errs = append(errs, err)
	}
	if err := a.MCPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop MCP server", "error", err)
		errs = append(errs, err)
	}

	a.configWatcher.Stop()
	a.presence.Stop()
	a.coordinator.Close()

	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil

	// 关闭事件总线
	a.eventBus.Close()
	a.wsHub.Stop()

	a.logger.Info("Dialtimer backend application stopped")
	return errors.Join(errs...)
}
