package http

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialtimer/backend/internal/application/lifecycle"
	appNotification "github.com/dialtimer/backend/internal/application/notification"
	appTimer "github.com/dialtimer/backend/internal/application/timer"
	domainNotification "github.com/dialtimer/backend/internal/domain/notification"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	infraNotification "github.com/dialtimer/backend/internal/infrastructure/notification"
	"github.com/dialtimer/backend/internal/infrastructure/singleton"
	"github.com/dialtimer/backend/internal/infrastructure/storage"
	"github.com/dialtimer/backend/internal/infrastructure/watcher"
	"github.com/dialtimer/backend/internal/infrastructure/websocket"
	"github.com/dialtimer/backend/internal/interfaces/http/handler"
	"github.com/dialtimer/backend/internal/interfaces/mcp"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	cfg := config.NewConfig()
	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	hub := websocket.NewHub()
	hub.Start()
	t.Cleanup(hub.Stop)
	bus := watcher.NewEventBus()
	t.Cleanup(bus.Close)

	notificationService := appNotification.NewService(
		infraNotification.NewMemoryRepository(10),
		domainNotification.NewService(),
		infraNotification.NewWebSocketPusher(hub),
		clk,
	)
	timerCfg := appTimer.DefaultConfig()
	coordinator := appTimer.NewCoordinator(
		appTimer.ProvideStateMachine(storage.NewMemoryStore(), clk),
		appTimer.NewRunner(clk, notificationService, timerCfg),
		appTimer.NewScheduler(clk),
		appTimer.NewBroadcaster(),
		bus,
		clk,
		timerCfg,
	)
	t.Cleanup(coordinator.Close)
	presence := lifecycle.NewPresenceManager(coordinator, bus, clk, cfg)

	return NewServer(
		config.NewServerConfig(cfg),
		handler.NewTimerHandler(coordinator),
		handler.NewLifecycleHandler(presence),
		handler.NewNotificationHandler(notificationService),
		handler.NewStreamHandler(coordinator, presence, hub, websocket.NewUpgrader(nil)),
		mcp.NewServer(coordinator),
	)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var health singleton.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, singleton.ServiceName, health.Service)
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"计时状态", http.MethodGet, "/api/v1/timer", http.StatusOK},
		{"常用时长", http.MethodGet, "/api/v1/timer/suggestions", http.StatusOK},
		{"生命周期状态", http.MethodGet, "/api/v1/lifecycle/status", http.StatusOK},
		{"通知列表", http.MethodGet, "/api/v1/notifications", http.StatusOK},
		{"开始计时", http.MethodPost, "/api/v1/timer/start", http.StatusOK},
		{"不存在的路由", http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := newTestServer(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(listener) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + listener.Addr().String() + "/health")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), singleton.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err, "正常关闭不应返回错误")
	case <-time.After(2 * time.Second):
		t.Fatal("Serve 未在关闭后返回")
	}
}
