// Package http 计时服务的 HTTP/WebSocket 接入层
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/log"
	"github.com/dialtimer/backend/internal/infrastructure/singleton"
	"github.com/dialtimer/backend/internal/interfaces/http/handler"
	"github.com/dialtimer/backend/internal/interfaces/http/middleware"
	"github.com/dialtimer/backend/internal/interfaces/mcp"
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	mu       sync.Mutex
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	cfg *config.ServerConfig,
	timerHandler *handler.TimerHandler,
	lifecycleHandler *handler.LifecycleHandler,
	notificationHandler *handler.NotificationHandler,
	streamHandler *handler.StreamHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log.NewModuleLogger("http", "access")))

	logger := log.NewModuleLogger("http", "server")

	api := router.Group("/api/v1")
	api.Use(middleware.EnsureUTF8Body())
	{
		timer := api.Group("/timer")
		{
			timer.GET("", timerHandler.GetState)
			timer.GET("/settings", timerHandler.GetSettings)
			timer.GET("/suggestions", timerHandler.GetSuggestions)
			timer.GET("/runner", timerHandler.GetRunner)
			timer.POST("/time", timerHandler.SetTime)
			timer.POST("/angle", timerHandler.SetAngle)
			timer.POST("/drag", timerHandler.Drag)
			timer.POST("/start", timerHandler.Start)
			timer.POST("/pause", timerHandler.Pause)
			timer.POST("/stop", timerHandler.Stop)
			timer.POST("/reset", timerHandler.Reset)
			timer.POST("/intent", timerHandler.Intent)
			timer.DELETE("/data", timerHandler.ClearData)
		}

		lifecycle := api.Group("/lifecycle")
		{
			lifecycle.POST("/heartbeat", lifecycleHandler.Heartbeat)
			lifecycle.POST("/background", lifecycleHandler.Background)
			lifecycle.POST("/foreground", lifecycleHandler.Foreground)
			lifecycle.GET("/status", lifecycleHandler.GetStatus)
		}

		api.GET("/notifications", notificationHandler.List)
	}

	router.GET("/ws/timer", streamHandler.TimerStream)
	router.GET("/ws/notifications", streamHandler.NotificationStream)

	// 健康检查，单例锁据此识别已运行的实例
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, singleton.HealthResponse{
			Status:  "ok",
			Service: singleton.ServiceName,
		})
	})

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: cfg.HTTPPort,
		logger:   logger,
	}
}

// Handler 返回路由，便于测试
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Serve 在已获取的 listener 上提供服务，正常关闭时返回 nil
func (s *HTTPServer) Serve(listener net.Listener) error {
	server := &http.Server{
		Addr:              s.httpPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.logger.Info("HTTP server starting",
		"addr", listener.Addr().String(),
	)

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// requestLogger 访问日志，/health 不记录
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/health" {
			return
		}
		logger.Debug("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
