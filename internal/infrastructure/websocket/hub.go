package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// 订阅主题
const (
	// TopicTimer 计时会话事件（开始、完成、对账等）
	TopicTimer = "timer"
	// TopicNotifications 通知与振动
	TopicNotifications = "notifications"
)

// Hub WebSocket 连接管理中心
type Hub struct {
	// 按主题分组的连接
	topics map[string]map[*Client]bool
	// 注册连接
	register chan subscription
	// 注销连接
	unregister chan subscription
	// 广播消息
	broadcast chan *Message
	stop      chan struct{}
	done      chan struct{}
	once      sync.Once
	mu        sync.RWMutex
	logger    *slog.Logger
}

// Message 消息
type Message struct {
	Topic string
	Data  []byte
}

type subscription struct {
	topic  string
	client *Client
	ack    chan struct{}
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan subscription),
		unregister: make(chan subscription),
		broadcast:  make(chan *Message, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     log.NewModuleLogger("websocket", "hub"),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行）
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for topic, clients := range h.topics {
				for client := range clients {
					client.Close()
				}
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			return

		case sub := <-h.register:
			h.mu.Lock()
			if h.topics[sub.topic] == nil {
				h.topics[sub.topic] = make(map[*Client]bool)
			}
			h.topics[sub.topic][sub.client] = true
			h.mu.Unlock()
			close(sub.ack)

		case sub := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.topics[sub.topic]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.topics, sub.topic)
				}
			}
			h.mu.Unlock()
			close(sub.ack)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.topics[msg.Topic] {
				if !client.Send(msg.Data) {
					h.logger.Warn("Send buffer full, dropping message",
						"client_id", client.ID,
						"topic", msg.Topic,
					)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	go h.Run()
}

// Stop 停止 Hub 并关闭所有连接
func (h *Hub) Stop() {
	h.once.Do(func() {
		close(h.stop)
	})
	<-h.done
}

// Register 注册连接
func (h *Hub) Register(topic string, client *Client) {
	sub := subscription{topic: topic, client: client, ack: make(chan struct{})}
	select {
	case h.register <- sub:
		<-sub.ack
	case <-h.stop:
	}
}

// Unregister 注销连接
func (h *Hub) Unregister(topic string, client *Client) {
	sub := subscription{topic: topic, client: client, ack: make(chan struct{})}
	select {
	case h.unregister <- sub:
		<-sub.ack
	case <-h.stop:
	}
}

// BroadcastToTopic 向主题的所有连接广播消息
func (h *Hub) BroadcastToTopic(topic string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", topic, err)
	}

	select {
	case <-h.stop:
		return fmt.Errorf("hub stopped")
	default:
	}

	select {
	case h.broadcast <- &Message{Topic: topic, Data: jsonData}:
		return nil
	default:
		return fmt.Errorf("broadcast queue full, dropping %s message", topic)
	}
}

// Count 主题当前连接数
func (h *Hub) Count(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
