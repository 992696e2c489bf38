// Package websocket 管理展示端的 WebSocket 连接与主题广播
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

const (
	// writeWait 单次写入超时
	writeWait = 10 * time.Second
	// pongWait 超过该时间未收到任何消息则断开
	pongWait = 60 * time.Second
	// pingPeriod 发送 Ping 的间隔，必须小于 pongWait
	pingPeriod = pongWait * 9 / 10
	// maxMessageSize 客户端消息大小上限
	maxMessageSize = 64 * 1024
)

// defaultBufferSize 未配置时的读写缓冲大小
const defaultBufferSize = 1024

// NewUpgrader 创建 HTTP -> WebSocket 升级器，cfg 为 nil 时使用默认缓冲大小
func NewUpgrader(cfg *config.WebSocketConfig) *websocket.Upgrader {
	readSize, writeSize := defaultBufferSize, defaultBufferSize
	if cfg != nil {
		if cfg.ReadBufferSize > 0 {
			readSize = cfg.ReadBufferSize
		}
		if cfg.WriteBufferSize > 0 {
			writeSize = cfg.WriteBufferSize
		}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  readSize,
		WriteBufferSize: writeSize,
		CheckOrigin: func(r *http.Request) bool {
			return true // 本机及局域网展示端
		},
	}
}

// Client 单个 WebSocket 连接
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	onPong func()
	logger *slog.Logger
}

// NewClient 包装已升级的连接
func NewClient(conn *websocket.Conn) *Client {
	id := uuid.New().String()
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		logger: log.NewModuleLogger("websocket", "client").With("client_id", id),
	}
}

// Send 非阻塞发送，缓冲区满或连接已关闭时返回 false
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// SendJSON 序列化后发送
func (c *Client) SendJSON(v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", "error", err)
		return false
	}
	return c.Send(data)
}

// Done 连接关闭后关闭的通道
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close 关闭连接
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// OnPong 设置收到 Pong 时的回调，须在 Serve 之前调用
func (c *Client) OnPong(fn func()) {
	c.onPong = fn
}

// Serve 启动写协程并在当前 goroutine 中读取消息，连接断开后返回
// onMessage 为 nil 时忽略客户端消息
func (c *Client) Serve(onMessage func(message []byte)) {
	go c.writePump()
	c.readPump(onMessage)
}

// readPump 读取消息
func (c *Client) readPump(onMessage func([]byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		// 收到 Pong 说明对方存活，续期读取超时
		if c.onPong != nil {
			c.onPong()
		}
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Connection read error", "error", err)
			}
			return
		}

		// 收到任何消息都续期读取超时
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if onMessage != nil {
			onMessage(message)
		}
	}
}

// writePump 写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("Failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
