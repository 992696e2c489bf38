package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appNotification "github.com/dialtimer/backend/internal/application/notification"
	domainLifecycle "github.com/dialtimer/backend/internal/domain/lifecycle"
	"github.com/dialtimer/backend/internal/interfaces/http/response"
)

func TestLifecycleHandler_Heartbeat(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/api/v1/lifecycle/heartbeat", domainLifecycle.HeartbeatRequest{
		ClientID: "phone-1",
		Name:     "Pixel",
	})
	require.Equal(t, http.StatusOK, code)

	var hb domainLifecycle.HeartbeatResponse
	require.NoError(t, json.Unmarshal(resp.Data, &hb))
	assert.Equal(t, "ok", hb.Status)
	assert.Equal(t, domainLifecycle.PhaseForeground, hb.Phase)
	assert.Equal(t, 1, hb.ActiveClients)

	t.Run("缺少 client_id", func(t *testing.T) {
		code, resp := env.do(t, http.MethodPost, "/api/v1/lifecycle/heartbeat", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, response.CodeInvalidParam, resp.Code)
	})
}

func TestLifecycleHandler_BackgroundForeground(t *testing.T) {
	env := newTestEnv(t)
	env.intent(t, http.MethodPost, "/api/v1/timer/start", nil)

	_, resp := env.do(t, http.MethodPost, "/api/v1/lifecycle/background", nil)
	var status domainLifecycle.LifecycleStatus
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Equal(t, domainLifecycle.PhaseBackground, status.Phase)
	assert.NotNil(t, status.BackgroundSince)

	_, resp = env.do(t, http.MethodGet, "/api/v1/lifecycle/status", nil)
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Equal(t, domainLifecycle.PhaseBackground, status.Phase)

	_, resp = env.do(t, http.MethodPost, "/api/v1/lifecycle/foreground", nil)
	var fg ForegroundResult
	require.NoError(t, json.Unmarshal(resp.Data, &fg))
	require.NotNil(t, fg.Status)
	assert.Equal(t, domainLifecycle.PhaseForeground, fg.Status.Phase)
	assert.Nil(t, fg.Status.BackgroundSince)

	// 计时在后台期间继续
	assert.True(t, env.coordinator.State().IsActive())
}

func TestNotificationHandler_List(t *testing.T) {
	env := newTestEnv(t)

	t.Run("无通知", func(t *testing.T) {
		_, resp := env.do(t, http.MethodGet, "/api/v1/notifications", nil)
		var items []*appNotification.NotificationDTO
		require.NoError(t, json.Unmarshal(resp.Data, &items))
		assert.Empty(t, items)
	})

	t.Run("开始计时后有进度通知", func(t *testing.T) {
		env.intent(t, http.MethodPost, "/api/v1/timer/start", nil)

		_, resp := env.do(t, http.MethodGet, "/api/v1/notifications?limit=5", nil)
		var items []*appNotification.NotificationDTO
		require.NoError(t, json.Unmarshal(resp.Data, &items))
		require.NotEmpty(t, items)
		assert.Equal(t, "progress", items[0].Kind)
		assert.Equal(t, "剩余时间: 05:00", items[0].Message)
		assert.True(t, items[0].Ongoing)
	})

	t.Run("limit 非法", func(t *testing.T) {
		code, resp := env.do(t, http.MethodGet, "/api/v1/notifications?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, response.CodeInvalidParam, resp.Code)
	})
}
