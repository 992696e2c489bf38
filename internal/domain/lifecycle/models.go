// Package lifecycle 展示端在线状态与前后台阶段
package lifecycle

import "time"

// Phase 前后台阶段
type Phase string

const (
	// PhaseForeground 至少有一个展示端在线
	PhaseForeground Phase = "foreground"
	// PhaseBackground 没有展示端在线，计时在后台继续
	PhaseBackground Phase = "background"
)

// ClientInfo 展示端信息
type ClientInfo struct {
	// ClientID 唯一展示端标识
	ClientID string `json:"client_id"`
	// Name 展示端名称（可选，如设备名）
	Name string `json:"name,omitempty"`
	// LastSeen 最后心跳时间
	LastSeen time.Time `json:"last_seen"`
	// Connected 由 WebSocket 长连接持有，连接断开前不会因心跳超时被移除
	Connected bool `json:"connected"`
}

// HeartbeatRequest 心跳请求
type HeartbeatRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Name     string `json:"name,omitempty"`
}

// HeartbeatResponse 心跳响应
type HeartbeatResponse struct {
	Status        string `json:"status"`
	Phase         Phase  `json:"phase"`
	ActiveClients int    `json:"active_clients"`
}

// LifecycleStatus 生命周期状态
type LifecycleStatus struct {
	Phase         Phase         `json:"phase"`
	ActiveClients []*ClientInfo `json:"active_clients"`
	// BackgroundSince 进入后台的时间
	BackgroundSince *time.Time `json:"background_since,omitempty"`
}
