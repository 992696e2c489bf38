package notification

import (
	"github.com/dialtimer/backend/internal/application/notification"
	"github.com/dialtimer/backend/internal/infrastructure/websocket"
)

// WebSocketPusher WebSocket 推送实现
type WebSocketPusher struct {
	hub *websocket.Hub
}

// NewWebSocketPusher 创建 WebSocket 推送器
func NewWebSocketPusher(hub *websocket.Hub) *WebSocketPusher {
	return &WebSocketPusher{hub: hub}
}

// Push 推送到通知主题的所有订阅者
func (p *WebSocketPusher) Push(n *notification.NotificationDTO) error {
	return p.hub.BroadcastToTopic(websocket.TopicNotifications, n)
}

// 编译时检查接口实现
var _ notification.Pusher = (*WebSocketPusher)(nil)
