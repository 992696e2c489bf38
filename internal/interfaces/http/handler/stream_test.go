package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainLifecycle "github.com/dialtimer/backend/internal/domain/lifecycle"
	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
)

// inbound 下行消息，data 延迟解析
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialStream(t *testing.T, env *testEnv, path string) *gorillaws.Conn {
	t.Helper()

	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil 读取消息直到满足条件
func readUntil(t *testing.T, conn *gorillaws.Conn, match func(inbound) bool) inbound {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg inbound
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &msg))
		if match(msg) {
			return msg
		}
	}
}

func ofType(typ string) func(inbound) bool {
	return func(m inbound) bool { return m.Type == typ }
}

func TestStreamHandler_TimerStream(t *testing.T) {
	env := newTestEnv(t)
	conn := dialStream(t, env, "/ws/timer?name=phone")

	t.Run("连接后收到当前状态", func(t *testing.T) {
		msg := readUntil(t, conn, ofType(MessageState))
		var state domainTimer.TimerState
		require.NoError(t, json.Unmarshal(msg.Data, &state))
		assert.Equal(t, domainTimer.StatusIdle, state.Status)
		assert.Equal(t, domainTimer.DefaultTimeMs, state.TotalTimeMs)
	})

	t.Run("连接计为在线展示端", func(t *testing.T) {
		require.Eventually(t, func() bool {
			return env.presence.ActiveClientCount() == 1
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("意图消息返回确认和新状态", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"action":  "set_time",
			"time_ms": 60000,
		}))

		msg := readUntil(t, conn, ofType(MessageAck))
		var ack AckData
		require.NoError(t, json.Unmarshal(msg.Data, &ack))
		assert.Equal(t, domainTimer.ActionSetTime, ack.Action)
		assert.True(t, ack.Accepted)

		assert.Equal(t, int64(60000), env.coordinator.State().TotalTimeMs)
	})

	t.Run("心跳消息不产生回复", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]string{"action": "heartbeat"}))
		require.NoError(t, conn.WriteJSON(map[string]string{"action": "pause"}))

		msg := readUntil(t, conn, func(m inbound) bool { return m.Type == MessageAck || m.Type == MessageError })
		require.Equal(t, MessageAck, msg.Type)
		var ack AckData
		require.NoError(t, json.Unmarshal(msg.Data, &ack))
		assert.Equal(t, domainTimer.ActionPause, ack.Action)
		assert.False(t, ack.Accepted, "空闲状态下暂停应被拒绝")
	})

	t.Run("未知操作返回错误", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]string{"action": "explode"}))
		msg := readUntil(t, conn, ofType(MessageError))
		assert.Contains(t, string(msg.Data), "unknown timer action")
	})

	t.Run("非法消息返回错误", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(gorillaws.TextMessage, []byte("{not json")))
		msg := readUntil(t, conn, ofType(MessageError))
		assert.Contains(t, string(msg.Data), "invalid message")
	})

	t.Run("会话事件广播到连接", func(t *testing.T) {
		unsubscribe := env.bus.SubscribeMultiple(TimerEventTypes, env.stream)
		defer unsubscribe()

		require.NoError(t, conn.WriteJSON(map[string]string{"action": "start"}))
		msg := readUntil(t, conn, ofType(MessageEvent))
		var event EventData
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, "timer.started", string(event.Type))
		assert.Equal(t, int64(60000), event.TotalTimeMs)
	})

	t.Run("断开后进入后台", func(t *testing.T) {
		require.NoError(t, conn.Close())
		require.Eventually(t, func() bool {
			return env.presence.Phase() == domainLifecycle.PhaseBackground
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, 0, env.presence.ActiveClientCount())

		// 计时在后台继续
		assert.True(t, env.coordinator.State().IsActive())
	})
}

func TestStreamHandler_SilentClientStaysAttached(t *testing.T) {
	env := newTestEnv(t)
	conn := dialStream(t, env, "/ws/timer")
	readUntil(t, conn, ofType(MessageState))
	require.Eventually(t, func() bool {
		return env.presence.ActiveClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	env.intent(t, http.MethodPost, "/api/v1/timer/start", nil)

	// 连接一直不发消息，超过心跳超时
	env.clock.Advance(61 * time.Second)
	env.presence.CheckTimeouts()

	assert.Equal(t, domainLifecycle.PhaseForeground, env.presence.Phase())
	assert.Equal(t, 1, env.presence.ActiveClientCount())
	assert.True(t, env.coordinator.RunnerSnapshot().Attached, "展示端仍连接时不应断开后台计时器")

	// 后台计时器的更新继续到达协调器
	require.Eventually(t, func() bool {
		return env.coordinator.State().RemainingTimeMs < domainTimer.DefaultTimeMs
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStreamHandler_NotificationStream(t *testing.T) {
	env := newTestEnv(t)
	conn := dialStream(t, env, "/ws/notifications")

	require.Eventually(t, func() bool {
		return env.hub.Count("notifications") == 1
	}, 2*time.Second, 10*time.Millisecond)

	env.intent(t, "POST", "/api/v1/timer/start", nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var dto map[string]interface{}
	require.NoError(t, conn.ReadJSON(&dto))
	assert.Equal(t, "progress", dto["kind"])
}
