package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/dialtimer/backend/internal/application/lifecycle"
	appTimer "github.com/dialtimer/backend/internal/application/timer"
	"github.com/dialtimer/backend/internal/domain/events"
	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/infrastructure/log"
	"github.com/dialtimer/backend/internal/infrastructure/websocket"
)

// 推送消息类型
const (
	MessageState = "state"
	MessageAck   = "ack"
	MessageError = "error"
	MessageEvent = "event"
)

// actionHeartbeat 展示端保活消息，不是计时意图
const actionHeartbeat = "heartbeat"

// StreamMessage /ws/timer 下行消息
type StreamMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// AckData 意图处理结果
type AckData struct {
	Action   domainTimer.Action `json:"action"`
	Accepted bool               `json:"accepted"`
}

// EventData 计时会话事件
type EventData struct {
	Type            events.EventType `json:"type"`
	SessionID       string           `json:"session_id,omitempty"`
	TotalTimeMs     int64            `json:"total_time_ms"`
	RemainingTimeMs int64            `json:"remaining_time_ms"`
	Time            time.Time        `json:"time"`
}

// TimerEventTypes 转发给展示端的事件类型
var TimerEventTypes = []events.EventType{
	events.TimerStarted,
	events.TimerPaused,
	events.TimerStopped,
	events.TimerFinished,
	events.TimerResynced,
	events.TimerDataCleared,
}

// StreamHandler WebSocket 推送处理器
type StreamHandler struct {
	coordinator *appTimer.Coordinator
	presence    *lifecycle.PresenceManager
	hub         *websocket.Hub
	upgrader    *gorillaws.Upgrader
	logger      *slog.Logger
}

// NewStreamHandler 创建推送处理器
func NewStreamHandler(
	coordinator *appTimer.Coordinator,
	presence *lifecycle.PresenceManager,
	hub *websocket.Hub,
	upgrader *gorillaws.Upgrader,
) *StreamHandler {
	return &StreamHandler{
		coordinator: coordinator,
		presence:    presence,
		hub:         hub,
		upgrader:    upgrader,
		logger:      log.NewModuleLogger("http", "stream"),
	}
}

// TimerStream 计时状态推送，同时接收意图消息
// 连接期间展示端视为在线，断开时从在线列表移除
func (h *StreamHandler) TimerStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(conn)
	ctx := log.WithClientID(c.Request.Context(), client.ID)
	logger := log.FromContext(ctx, h.logger)
	name := c.Query("name")

	states, unsubscribe := h.coordinator.Subscribe()
	defer unsubscribe()

	h.hub.Register(websocket.TopicTimer, client)
	defer h.hub.Unregister(websocket.TopicTimer, client)

	h.presence.Connect(client.ID, name)
	defer h.presence.Disconnect(client.ID)
	client.OnPong(func() {
		h.presence.Touch(client.ID)
	})

	go h.forwardStates(client, states)

	logger.Info("Timer stream connected", "name", name)
	client.Serve(func(message []byte) {
		h.presence.Heartbeat(client.ID, name)
		h.handleMessage(client, logger, message)
	})
	logger.Info("Timer stream disconnected")
}

// forwardStates 将状态快照转发给连接，直到连接关闭或订阅结束
func (h *StreamHandler) forwardStates(client *websocket.Client, states <-chan domainTimer.TimerState) {
	for {
		select {
		case <-client.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			client.SendJSON(StreamMessage{Type: MessageState, Data: st})
		}
	}
}

func (h *StreamHandler) handleMessage(client *websocket.Client, logger *slog.Logger, message []byte) {
	var intent domainTimer.Intent
	if err := json.Unmarshal(message, &intent); err != nil {
		client.SendJSON(StreamMessage{Type: MessageError, Data: "invalid message: " + err.Error()})
		return
	}
	if intent.Action == actionHeartbeat {
		return
	}

	accepted, err := h.coordinator.Handle(intent)
	if err != nil {
		logger.Debug("Rejected intent message", "action", intent.Action, "error", err)
		client.SendJSON(StreamMessage{Type: MessageError, Data: err.Error()})
		return
	}
	client.SendJSON(StreamMessage{
		Type: MessageAck,
		Data: AckData{Action: intent.Action, Accepted: accepted},
	})
}

// NotificationStream 通知推送
func (h *StreamHandler) NotificationStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(conn)
	h.hub.Register(websocket.TopicNotifications, client)
	defer h.hub.Unregister(websocket.TopicNotifications, client)

	client.Serve(nil)
}

// HandleEvent 将计时会话事件广播到 /ws/timer 连接
func (h *StreamHandler) HandleEvent(event events.Event) error {
	te, ok := event.(*events.TimerEvent)
	if !ok {
		return nil
	}
	return h.hub.BroadcastToTopic(websocket.TopicTimer, StreamMessage{
		Type: MessageEvent,
		Data: EventData{
			Type:            te.EventType,
			SessionID:       te.SessionID,
			TotalTimeMs:     te.TotalTimeMs,
			RemainingTimeMs: te.RemainingTimeMs,
			Time:            te.EventTime,
		},
	})
}

// 编译时检查接口实现
var _ events.Handler = (*StreamHandler)(nil)
