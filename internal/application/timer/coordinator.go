// Package timer 协调用户意图、计时器状态机与后台计时器
package timer

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/dialtimer/backend/internal/domain/events"
	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// Coordinator 计时会话协调器
// 所有状态机修改（意图、后台更新、延迟任务、对账）都在同一把锁下串行执行
type Coordinator struct {
	mu          sync.Mutex
	machine     *domainTimer.StateMachine
	runner      *Runner
	scheduler   *Scheduler
	broadcaster *Broadcaster
	bus         events.EventBus
	clock       clock.Clock
	cfg         Config
	logger      *slog.Logger

	// sessionID 当前后台会话，不匹配的更新会被丢弃
	sessionID string
	// generation 当前会话最近一次继续后的代数，更早的更新会被丢弃
	generation int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCoordinator 创建协调器
func NewCoordinator(
	machine *domainTimer.StateMachine,
	runner *Runner,
	scheduler *Scheduler,
	broadcaster *Broadcaster,
	bus events.EventBus,
	clk clock.Clock,
	cfg Config,
) *Coordinator {
	if clk == nil {
		clk = clock.New()
	}
	return &Coordinator{
		machine:     machine,
		runner:      runner,
		scheduler:   scheduler,
		broadcaster: broadcaster,
		bus:         bus,
		clock:       clk,
		cfg:         cfg.withDefaults(),
		logger:      log.NewModuleLogger("timer", "coordinator"),
	}
}

// Open 启动后台更新的处理循环
func (c *Coordinator) Open() {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.publishLocked()
	c.mu.Unlock()

	go c.pump(ctx, done)
	c.logger.Info("Timer coordinator started")
}

// Close 停止处理循环并释放后台会话
func (c *Coordinator) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.runner.Close()
	c.scheduler.CancelAll()
	c.broadcaster.Close()
	c.logger.Info("Timer coordinator stopped")
}

func (c *Coordinator) pump(ctx context.Context, done chan struct{}) {
	defer close(done)

	updates := c.runner.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			c.HandleUpdate(u)
		}
	}
}

// State 返回当前状态快照
func (c *Coordinator) State() domainTimer.TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// SavedSettings 返回持久化的设置
func (c *Coordinator) SavedSettings() domainTimer.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.SavedSettings()
}

// RunnerSnapshot 返回后台计时器状态
func (c *Coordinator) RunnerSnapshot() Snapshot {
	return c.runner.Snapshot()
}

// Subscribe 订阅状态快照
func (c *Coordinator) Subscribe() (<-chan domainTimer.TimerState, func()) {
	return c.broadcaster.Subscribe()
}

// UpdateConfig 热更新计时参数
func (c *Coordinator) UpdateConfig(cfg Config) {
	cfg = cfg.withDefaults()

	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()

	c.runner.UpdateConfig(cfg)
	c.logger.Info("Timer config updated",
		"keep_awake_after_finish", cfg.KeepAwakeAfterFinish,
		"divergence_threshold", cfg.DivergenceThreshold,
		"tick_interval", cfg.TickInterval,
	)
}

// Handle 分发表示层意图
func (c *Coordinator) Handle(intent domainTimer.Intent) (bool, error) {
	if err := intent.Validate(); err != nil {
		return false, err
	}

	switch intent.Action {
	case domainTimer.ActionSetTime:
		return c.SetTime(*intent.TimeMs), nil
	case domainTimer.ActionSetAngle:
		return c.SetAngle(*intent.Angle), nil
	case domainTimer.ActionStart:
		return c.Start(), nil
	case domainTimer.ActionPause:
		return c.Pause(), nil
	case domainTimer.ActionStop:
		return c.Stop(), nil
	case domainTimer.ActionReset:
		return c.Reset(), nil
	}
	return false, domainTimer.ErrUnknownAction
}

// SetTime 设置时长，越界值被截断
func (c *Coordinator) SetTime(timeMs int64) bool {
	if !domainTimer.IsValidTime(timeMs) {
		c.logger.Warn("Time out of range, clamping",
			"time_ms", timeMs,
			"clamped_ms", domainTimer.ClampTime(timeMs),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.SetTime(timeMs) {
		return false
	}
	c.publishLocked()
	return true
}

// SetAngle 通过表盘角度设置时长
func (c *Coordinator) SetAngle(angle float64) bool {
	switch {
	case math.IsNaN(angle) || math.IsInf(angle, 0):
		c.logger.Warn("Invalid angle, using start angle", "angle", angle)
	case angle < 0 || angle >= 360:
		c.logger.Warn("Angle outside [0, 360), normalizing", "angle", angle)
	case !domainTimer.IsValidAngle(angle):
		c.logger.Debug("Angle in notch, snapping", "angle", angle, "snapped", domainTimer.ConstrainAngle(angle))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.SetAngle(angle) {
		return false
	}
	c.publishLocked()
	return true
}

// Start 开始或继续计时
func (c *Coordinator) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.machine.State()
	if !c.machine.Start() {
		return false
	}
	c.scheduler.Cancel(keepAwakeKey(c.sessionID))

	resumed := false
	if prev.Status == domainTimer.StatusPaused && c.sessionID != "" {
		snap := c.runner.Snapshot()
		resumed = snap.SessionID == c.sessionID && snap.State == RunnerPaused && c.runner.Resume()
		if !resumed {
			c.logger.Warn("Runner session lost while paused, starting a new one",
				"session_id", c.sessionID,
				"remaining_ms", prev.RemainingTimeMs,
			)
		}
	}
	if !resumed {
		c.sessionID = c.runner.Start(prev.TotalTimeMs, prev.RemainingTimeMs)
	}
	c.generation = c.runner.Snapshot().Generation

	c.logger.Info("Timer started",
		"session_id", c.sessionID,
		"total_ms", prev.TotalTimeMs,
		"remaining_ms", prev.RemainingTimeMs,
		"resumed", resumed,
	)
	c.publishEventLocked(events.TimerStarted)
	c.publishLocked()
	return true
}

// Pause 暂停计时，状态机先吸收后台计时器冻结的剩余时间
func (c *Coordinator) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.State().CanPause() {
		return false
	}

	remaining, ok := c.runner.Pause()
	if !ok {
		// 后台会话可能已自然完成，更新尚未被处理
		if snap := c.runner.Snapshot(); snap.SessionID == c.sessionID && snap.State == RunnerFinished {
			remaining, ok = 0, true
		}
	}
	if ok {
		c.applyTickLocked(remaining)
	}
	if !c.machine.Pause() {
		// 暂停前已到截止时间
		return false
	}

	c.logger.Info("Timer paused",
		"session_id", c.sessionID,
		"remaining_ms", c.machine.State().RemainingTimeMs,
	)
	c.publishEventLocked(events.TimerPaused)
	c.publishLocked()
	return true
}

// Stop 停止计时
func (c *Coordinator) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.machine.State()
	if !c.machine.Stop() {
		return false
	}
	c.logger.Info("Timer stopped", "session_id", c.sessionID, "remaining_ms", prev.RemainingTimeMs)
	c.publishEventLocked(events.TimerStopped)
	c.discardSessionLocked()
	c.publishLocked()
	return true
}

// Reset 重置计时器，任何状态下都允许
func (c *Coordinator) Reset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.machine.State()
	c.machine.Reset()
	if prev.Status != domainTimer.StatusIdle {
		c.logger.Info("Timer reset", "session_id", c.sessionID, "from", prev.Status)
		c.publishEventLocked(events.TimerStopped)
	}
	c.discardSessionLocked()
	c.publishLocked()
	return true
}

// ClearData 清除保存的设置并恢复默认状态
func (c *Coordinator) ClearData() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardSessionLocked()
	c.machine.ClearData()
	c.logger.Info("Timer data cleared")
	c.publishEventLocked(events.TimerDataCleared)
	c.publishLocked()
}

// HandleUpdate 应用后台计时器的更新，过期会话的更新被丢弃
func (c *Coordinator) HandleUpdate(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.SessionID == "" || u.SessionID != c.sessionID || u.Generation < c.generation {
		c.logger.Debug("Dropping stale runner update",
			"session_id", u.SessionID,
			"current_session_id", c.sessionID,
			"generation", u.Generation,
			"current_generation", c.generation,
			"kind", u.Kind,
		)
		return
	}

	switch u.Kind {
	case UpdateTick:
		c.applyTickLocked(u.RemainingMs)
	case UpdateFinished:
		c.applyTickLocked(0)
	case UpdateStopped:
	}
}

// OnBackground 所有展示端离开：确保计时中的会话继续运行，然后断开后台计时器
func (c *Coordinator) OnBackground() {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.machine.State()
	if st.Status == domainTimer.StatusRunning {
		snap := c.runner.Snapshot()
		if snap.SessionID != c.sessionID || snap.State == RunnerNone {
			c.logger.Warn("Runner has no live session, restarting from local state",
				"session_id", c.sessionID,
				"remaining_ms", st.RemainingTimeMs,
			)
			c.sessionID = c.runner.Start(st.TotalTimeMs, st.RemainingTimeMs)
			c.generation = 0
		}
	}
	c.runner.Detach()
	c.logger.Debug("Runner detached", "status", st.Status)
}

// OnForeground 展示端回来：重新连接后台计时器并对账
func (c *Coordinator) OnForeground() bool {
	return c.Reconcile()
}

// Reconcile 连接后台计时器，剩余时间偏差超过阈值时采用后台的值
// 返回是否修改了本地状态
func (c *Coordinator) Reconcile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.runner.Attach()
	return c.reconcileLocked(snap)
}

func (c *Coordinator) reconcileLocked(snap Snapshot) bool {
	st := c.machine.State()
	if st.Status != domainTimer.StatusRunning && st.Status != domainTimer.StatusPaused {
		return false
	}

	if c.sessionID == "" || snap.SessionID != c.sessionID || snap.State == RunnerNone {
		if st.Status == domainTimer.StatusRunning {
			c.logger.Warn("Runner session lost, continuing from local state",
				"session_id", c.sessionID,
				"runner_session_id", snap.SessionID,
				"remaining_ms", st.RemainingTimeMs,
			)
			c.sessionID = c.runner.Start(st.TotalTimeMs, st.RemainingTimeMs)
			c.generation = 0
		}
		return false
	}

	switch snap.State {
	case RunnerFinished:
		c.logger.Info("Runner finished while detached", "session_id", snap.SessionID)
		return c.applyTickLocked(0)
	case RunnerRunning:
		if st.Status != domainTimer.StatusRunning {
			return false
		}
		diff := snap.RemainingMs - st.RemainingTimeMs
		if diff < 0 {
			diff = -diff
		}
		if time.Duration(diff)*time.Millisecond <= c.cfg.DivergenceThreshold {
			return false
		}
		c.logger.Info("Adopting runner remaining time",
			"session_id", snap.SessionID,
			"local_ms", st.RemainingTimeMs,
			"runner_ms", snap.RemainingMs,
		)
		if !c.applyTickLocked(snap.RemainingMs) {
			return false
		}
		c.publishEventLocked(events.TimerResynced)
		return true
	}
	return false
}

// applyTickLocked 应用剩余时间，检测自然完成
func (c *Coordinator) applyTickLocked(remainingMs int64) bool {
	if !c.machine.Tick(remainingMs) {
		return false
	}
	if c.machine.State().Status == domainTimer.StatusFinished {
		c.onFinishedLocked()
	}
	c.publishLocked()
	return true
}

// onFinishedLocked 自然完成后延迟关闭屏幕常亮
func (c *Coordinator) onFinishedLocked() {
	id := c.sessionID
	c.scheduler.Schedule(keepAwakeKey(id), c.cfg.KeepAwakeAfterFinish, func() {
		c.clearKeepAwake(id)
	})
	c.logger.Info("Timer finished", "session_id", id, "total_ms", c.machine.State().TotalTimeMs)
	c.publishEventLocked(events.TimerFinished)
}

func (c *Coordinator) clearKeepAwake(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != sessionID || c.machine.State().Status != domainTimer.StatusFinished {
		return
	}
	if c.machine.SetKeepScreenOn(false) {
		c.publishLocked()
	}
}

// discardSessionLocked 取消延迟任务并丢弃后台会话
func (c *Coordinator) discardSessionLocked() {
	c.scheduler.Cancel(keepAwakeKey(c.sessionID))
	c.runner.Stop()
	c.sessionID = ""
	c.generation = 0
}

func (c *Coordinator) publishLocked() {
	c.broadcaster.Publish(c.machine.State())
}

func (c *Coordinator) publishEventLocked(eventType events.EventType) {
	if c.bus == nil {
		return
	}
	st := c.machine.State()
	c.bus.Publish(&events.TimerEvent{
		EventType:       eventType,
		SessionID:       c.sessionID,
		TotalTimeMs:     st.TotalTimeMs,
		RemainingTimeMs: st.RemainingTimeMs,
		EventTime:       c.clock.Now(),
	})
}

func keepAwakeKey(sessionID string) string {
	return "keep_awake:" + sessionID
}
