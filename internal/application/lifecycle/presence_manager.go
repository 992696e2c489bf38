// Package lifecycle 跟踪展示端在线状态，驱动计时会话的前后台切换
package lifecycle

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dialtimer/backend/internal/domain/events"
	"github.com/dialtimer/backend/internal/domain/lifecycle"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// Hooks 前后台切换回调
type Hooks interface {
	OnForeground() bool
	OnBackground()
}

// PresenceManager 展示端在线管理器
// 最后一个展示端心跳超时或断开时进入后台，任意展示端重新出现时回到前台
type PresenceManager struct {
	hooks  Hooks
	bus    events.EventBus
	clock  clock.Clock
	logger *slog.Logger

	heartbeatTimeout time.Duration
	checkInterval    time.Duration

	// transitionMu 保证回调按切换顺序执行，先于 mu 获取
	transitionMu    sync.Mutex
	mu              sync.RWMutex
	clients         map[string]*lifecycle.ClientInfo
	phase           lifecycle.Phase
	backgroundSince *time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPresenceManager 创建展示端在线管理器，初始为前台
func NewPresenceManager(hooks Hooks, bus events.EventBus, clk clock.Clock, cfg *config.Config) *PresenceManager {
	if clk == nil {
		clk = clock.New()
	}
	return &PresenceManager{
		hooks:            hooks,
		bus:              bus,
		clock:            clk,
		logger:           log.NewModuleLogger("lifecycle", "presence_manager"),
		heartbeatTimeout: cfg.Lifecycle.HeartbeatTimeout,
		checkInterval:    cfg.Lifecycle.CheckInterval,
		clients:          make(map[string]*lifecycle.ClientInfo),
		phase:            lifecycle.PhaseForeground,
	}
}

// Start 启动超时检查循环
func (pm *PresenceManager) Start() {
	pm.mu.Lock()
	if pm.done != nil {
		pm.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	pm.cancel = cancel
	pm.done = make(chan struct{})
	done := pm.done
	pm.mu.Unlock()

	ticker := pm.clock.NewTicker(pm.checkInterval)
	go pm.checkLoop(ctx, ticker, done)
	pm.logger.Info("Presence manager started",
		"heartbeat_timeout", pm.heartbeatTimeout,
		"check_interval", pm.checkInterval,
	)
}

// Stop 停止检查循环
func (pm *PresenceManager) Stop() {
	pm.mu.Lock()
	cancel, done := pm.cancel, pm.done
	pm.cancel, pm.done = nil, nil
	pm.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	pm.logger.Info("Presence manager stopped")
}

// Heartbeat 处理展示端心跳，后台时切回前台
func (pm *PresenceManager) Heartbeat(clientID, name string) *lifecycle.HeartbeatResponse {
	return pm.touch(clientID, name, false)
}

// Connect 登记由长连接持有的展示端，直到 Disconnect 前都视为在线
func (pm *PresenceManager) Connect(clientID, name string) *lifecycle.HeartbeatResponse {
	return pm.touch(clientID, name, true)
}

func (pm *PresenceManager) touch(clientID, name string, connected bool) *lifecycle.HeartbeatResponse {
	pm.transitionMu.Lock()
	defer pm.transitionMu.Unlock()

	pm.mu.Lock()
	now := pm.clock.Now()
	if existing, ok := pm.clients[clientID]; ok {
		existing.LastSeen = now
		if name != "" {
			existing.Name = name
		}
		existing.Connected = existing.Connected || connected
	} else {
		pm.clients[clientID] = &lifecycle.ClientInfo{
			ClientID:  clientID,
			Name:      name,
			LastSeen:  now,
			Connected: connected,
		}
		pm.logger.Info("Client registered", "client_id", clientID, "name", name, "connected", connected)
	}
	toForeground := pm.phase == lifecycle.PhaseBackground
	if toForeground {
		pm.setPhaseLocked(lifecycle.PhaseForeground)
	}
	count := len(pm.clients)
	pm.mu.Unlock()

	if toForeground {
		pm.enterForeground(count)
	}

	return &lifecycle.HeartbeatResponse{
		Status:        "ok",
		Phase:         lifecycle.PhaseForeground,
		ActiveClients: count,
	}
}

// Touch 只刷新已登记展示端的最后活跃时间，不触发前后台切换
func (pm *PresenceManager) Touch(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if c, ok := pm.clients[clientID]; ok {
		c.LastSeen = pm.clock.Now()
	}
}

// Disconnect 展示端主动断开，最后一个断开时进入后台
func (pm *PresenceManager) Disconnect(clientID string) {
	pm.transitionMu.Lock()
	defer pm.transitionMu.Unlock()

	pm.mu.Lock()
	if _, ok := pm.clients[clientID]; !ok {
		pm.mu.Unlock()
		return
	}
	delete(pm.clients, clientID)
	pm.logger.Info("Client disconnected", "client_id", clientID, "remaining", len(pm.clients))
	toBackground := len(pm.clients) == 0 && pm.phase == lifecycle.PhaseForeground
	if toBackground {
		pm.setPhaseLocked(lifecycle.PhaseBackground)
	}
	pm.mu.Unlock()

	if toBackground {
		pm.enterBackground(0)
	}
}

// EnterBackground 显式进入后台（展示端切到后台时调用）
func (pm *PresenceManager) EnterBackground() {
	pm.transitionMu.Lock()
	defer pm.transitionMu.Unlock()

	pm.mu.Lock()
	if pm.phase == lifecycle.PhaseBackground {
		pm.mu.Unlock()
		return
	}
	pm.setPhaseLocked(lifecycle.PhaseBackground)
	count := len(pm.clients)
	pm.mu.Unlock()

	pm.enterBackground(count)
}

// EnterForeground 显式回到前台，已在前台时仍会对账
// 返回对账是否修改了计时状态
func (pm *PresenceManager) EnterForeground() bool {
	pm.transitionMu.Lock()
	defer pm.transitionMu.Unlock()

	pm.mu.Lock()
	pm.setPhaseLocked(lifecycle.PhaseForeground)
	count := len(pm.clients)
	pm.mu.Unlock()

	return pm.enterForeground(count)
}

// Status 获取生命周期状态
func (pm *PresenceManager) Status() *lifecycle.LifecycleStatus {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	status := &lifecycle.LifecycleStatus{
		Phase:         pm.phase,
		ActiveClients: pm.activeClientsLocked(),
	}
	if pm.backgroundSince != nil {
		since := *pm.backgroundSince
		status.BackgroundSince = &since
	}
	return status
}

// Phase 当前阶段
func (pm *PresenceManager) Phase() lifecycle.Phase {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.phase
}

// ActiveClientCount 在线展示端数量
func (pm *PresenceManager) ActiveClientCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.clients)
}

func (pm *PresenceManager) activeClientsLocked() []*lifecycle.ClientInfo {
	result := make([]*lifecycle.ClientInfo, 0, len(pm.clients))
	for _, c := range pm.clients {
		clientCopy := *c
		result = append(result, &clientCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ClientID < result[j].ClientID
	})
	return result
}

func (pm *PresenceManager) checkLoop(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			pm.CheckTimeouts()
		}
	}
}

// CheckTimeouts 清理心跳超时的展示端，没有展示端在线时进入后台
// 长连接持有的展示端只在 Disconnect 时移除
func (pm *PresenceManager) CheckTimeouts() {
	pm.transitionMu.Lock()
	defer pm.transitionMu.Unlock()

	pm.mu.Lock()
	now := pm.clock.Now()
	var removed []string
	for id, c := range pm.clients {
		if c.Connected {
			continue
		}
		if now.Sub(c.LastSeen) > pm.heartbeatTimeout {
			delete(pm.clients, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		pm.logger.Info("Cleaned up inactive clients",
			"removed", removed,
			"remaining", len(pm.clients),
		)
	}
	toBackground := len(pm.clients) == 0 && pm.phase == lifecycle.PhaseForeground
	if toBackground {
		pm.setPhaseLocked(lifecycle.PhaseBackground)
	}
	pm.mu.Unlock()

	if toBackground {
		pm.enterBackground(0)
	}
}

func (pm *PresenceManager) setPhaseLocked(phase lifecycle.Phase) {
	pm.phase = phase
	if phase == lifecycle.PhaseBackground {
		now := pm.clock.Now()
		pm.backgroundSince = &now
	} else {
		pm.backgroundSince = nil
	}
}

// enterBackground 调用回调并发布事件，调用方持有 transitionMu
func (pm *PresenceManager) enterBackground(activeClients int) {
	pm.logger.Info("Entering background", "active_clients", activeClients)
	if pm.hooks != nil {
		pm.hooks.OnBackground()
	}
	pm.publish(events.LifecycleBackground, activeClients)
}

func (pm *PresenceManager) enterForeground(activeClients int) bool {
	pm.logger.Info("Entering foreground", "active_clients", activeClients)
	changed := false
	if pm.hooks != nil {
		changed = pm.hooks.OnForeground()
	}
	pm.publish(events.LifecycleForeground, activeClients)
	return changed
}

func (pm *PresenceManager) publish(eventType events.EventType, activeClients int) {
	if pm.bus == nil {
		return
	}
	pm.bus.Publish(&events.LifecycleEvent{
		EventType:     eventType,
		ActiveClients: activeClients,
		EventTime:     pm.clock.Now(),
	})
}
