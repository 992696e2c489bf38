package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dialtimer/backend/internal/application/lifecycle"
	appNotification "github.com/dialtimer/backend/internal/application/notification"
	appTimer "github.com/dialtimer/backend/internal/application/timer"
	"github.com/dialtimer/backend/internal/domain/events"
	domainNotification "github.com/dialtimer/backend/internal/domain/notification"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	infraNotification "github.com/dialtimer/backend/internal/infrastructure/notification"
	"github.com/dialtimer/backend/internal/infrastructure/storage"
	"github.com/dialtimer/backend/internal/infrastructure/watcher"
	"github.com/dialtimer/backend/internal/infrastructure/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv 处理器测试环境，使用假时钟和内存存储
type testEnv struct {
	clock        *clock.Fake
	store        *storage.MemoryStore
	bus          events.EventBus
	coordinator  *appTimer.Coordinator
	presence     *lifecycle.PresenceManager
	hub          *websocket.Hub
	notification *appNotification.Service
	stream       *StreamHandler
	router       *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clock: clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		store: storage.NewMemoryStore(),
		hub:   websocket.NewHub(),
	}
	env.hub.Start()
	t.Cleanup(env.hub.Stop)

	bus := watcher.NewEventBus()
	t.Cleanup(bus.Close)
	env.bus = bus

	env.notification = appNotification.NewService(
		infraNotification.NewMemoryRepository(10),
		domainNotification.NewService(),
		infraNotification.NewWebSocketPusher(env.hub),
		env.clock,
	)

	cfg := appTimer.DefaultConfig()
	runner := appTimer.NewRunner(env.clock, env.notification, cfg)
	env.coordinator = appTimer.NewCoordinator(
		appTimer.ProvideStateMachine(env.store, env.clock),
		runner,
		appTimer.NewScheduler(env.clock),
		appTimer.NewBroadcaster(),
		bus,
		env.clock,
		cfg,
	)
	env.coordinator.Open()
	t.Cleanup(env.coordinator.Close)

	env.presence = lifecycle.NewPresenceManager(env.coordinator, bus, env.clock, config.NewConfig())
	env.stream = NewStreamHandler(env.coordinator, env.presence, env.hub, websocket.NewUpgrader(nil))
	env.router = newTestRouter(env)
	return env
}

func newTestRouter(env *testEnv) *gin.Engine {
	router := gin.New()
	timerHandler := NewTimerHandler(env.coordinator)
	lifecycleHandler := NewLifecycleHandler(env.presence)
	notificationHandler := NewNotificationHandler(env.notification)

	api := router.Group("/api/v1")
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

	router.GET("/ws/timer", env.stream.TimerStream)
	router.GET("/ws/notifications", env.stream.NotificationStream)
	return router
}

// envelope 统一响应结构，data 延迟解析
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Detail  string          `json:"detail"`
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

// intent 发送请求并解析 IntentResult
func (env *testEnv) intent(t *testing.T, method, path string, body interface{}) IntentResult {
	t.Helper()
	code, resp := env.do(t, method, path, body)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var result IntentResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	return result
}
