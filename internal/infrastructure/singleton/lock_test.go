package singleton

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndLock_PortAvailable(t *testing.T) {
	// 使用随机可用端口
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := listener.Addr().String()
	listener.Close()

	// 测试端口可用的情况
	result, err := CheckAndLock(port)
	require.NoError(t, err)
	require.NotNil(t, result)
	defer result.Close()

	// 验证返回的 listener 可以正常使用
	assert.NotNil(t, result)
}

func TestCheckAndLock_PortInUse_HealthyInstance(t *testing.T) {
	server := httptest.NewServer(healthHandler(ServiceName))
	defer server.Close()

	_, port, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)

	result, err := CheckAndLock(":" + port)
	assert.NoError(t, err)
	assert.Nil(t, result, "已有实例运行时应返回 nil listener")
}

func TestCheckAndLock_PortInUse_UnhealthyInstance(t *testing.T) {
	// 创建一个监听端口但不提供健康检查的服务器
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := listener.Addr().String()
	// 不关闭 listener，保持端口占用

	// 测试端口被占用但实例不健康的情况
	result, err := CheckAndLock(port)
	// 应该返回错误
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "健康检查失败")

	// 清理
	listener.Close()
}

func TestIsAddrInUse(t *testing.T) {
	tests := []struct {
		name    string
		setup   func() error
		wantErr bool
	}{
		{
			name: "地址已在使用",
			setup: func() error {
				// 创建一个 listener 占用端口
				l1, err := net.Listen("tcp", ":0")
				if err != nil {
					return err
				}
				port := l1.Addr().String()

				// 尝试再次监听同一端口
				_, err = net.Listen("tcp", port)
				l1.Close()
				return err
			},
			wantErr: true,
		},
		{
			name: "其他错误",
			setup: func() error {
				// 无效的地址格式
				_, err := net.Listen("tcp", "invalid")
				return err
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setup()
			if tt.wantErr {
				assert.True(t, isAddrInUse(err), "应该检测到地址已在使用")
			} else {
				assert.False(t, isAddrInUse(err), "不应该检测为地址已在使用")
			}
		})
	}
}

func TestIsInstanceRunning(t *testing.T) {
	t.Run("实例正常运行", func(t *testing.T) {
		// 启动一个提供健康检查的服务器
		server := httptest.NewServer(healthHandler(ServiceName))
		defer server.Close()

		_, port, err := net.SplitHostPort(server.URL[7:])
		require.NoError(t, err)

		result := isInstanceRunning(":" + port)
		assert.True(t, result, "应该检测到实例在运行")
	})

	t.Run("实例不存在", func(t *testing.T) {
		// 使用一个不存在的端口
		result := isInstanceRunning(":99999")
		assert.False(t, result, "不应该检测到实例在运行")
	})

	t.Run("其他服务占用端口", func(t *testing.T) {
		server := httptest.NewServer(healthHandler("other-service"))
		defer server.Close()

		_, port, err := net.SplitHostPort(server.URL[7:])
		require.NoError(t, err)

		assert.False(t, isInstanceRunning(":"+port), "服务名不匹配不应视为本服务实例")
	})

	t.Run("实例返回非200状态码", func(t *testing.T) {
		// 启动一个返回错误状态的服务器
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, port, err := net.SplitHostPort(server.URL[7:])
		require.NoError(t, err)

		result := isInstanceRunning(":" + port)
		assert.False(t, result, "非200状态码不应视为实例健康")
	})
}

func healthHandler(service string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Service: service})
	})
}
