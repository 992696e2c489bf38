package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// UpdateKind 后台计时器更新类型
type UpdateKind string

const (
	// UpdateTick 剩余时间（整秒）变化
	UpdateTick UpdateKind = "tick"
	// UpdateFinished 自然完成
	UpdateFinished UpdateKind = "finished"
	// UpdateStopped 被用户停止
	UpdateStopped UpdateKind = "stopped"
)

// Update 后台计时器发出的更新
type Update struct {
	SessionID   string
	Kind        UpdateKind
	TotalMs     int64
	RemainingMs int64
	// Generation 会话每次继续后加一，暂停前发出的更新不会覆盖继续后的状态
	Generation int
}

// RunnerState 后台会话状态
type RunnerState string

const (
	RunnerNone     RunnerState = "none"
	RunnerRunning  RunnerState = "running"
	RunnerPaused   RunnerState = "paused"
	RunnerFinished RunnerState = "finished"
)

// Snapshot 后台计时器的权威状态
type Snapshot struct {
	SessionID   string      `json:"session_id,omitempty"`
	State       RunnerState `json:"state"`
	TotalMs     int64       `json:"total_ms"`
	RemainingMs int64       `json:"remaining_ms"`
	Generation  int         `json:"generation"`
	Attached    bool        `json:"attached"`
}

// runnerSession 一次运行/暂停中的倒计时
type runnerSession struct {
	id                string
	totalMs           int64
	deadline          time.Time
	remainingMs       int64
	lastEmittedSecond int64
	generation        int
	running           bool
	cancel            context.CancelFunc
}

// Runner 后台倒计时器
// 以截止时间为准计算剩余时间，与观察者是否连接无关
type Runner struct {
	mu        sync.Mutex
	clock     clock.Clock
	alarm     Alarm
	interval  time.Duration
	vibration time.Duration
	logger    *slog.Logger

	updates  chan Update
	session  *runnerSession
	finished *Snapshot
	attached bool
}

// NewRunner 创建后台计时器，初始为已连接状态
func NewRunner(clk clock.Clock, alarm Alarm, cfg Config) *Runner {
	cfg = cfg.withDefaults()
	if clk == nil {
		clk = clock.New()
	}
	if alarm == nil {
		alarm = noopAlarm{}
	}
	return &Runner{
		clock:     clk,
		alarm:     alarm,
		interval:  cfg.TickInterval,
		vibration: cfg.VibrationDuration,
		logger:    log.NewModuleLogger("timer", "runner"),
		updates:   make(chan Update, 1),
		attached:  true,
	}
}

// Updates 更新通道，容量为 1，未消费的旧更新会被新更新替换
func (r *Runner) Updates() <-chan Update {
	return r.updates
}

// Start 开始新的会话，取消已有会话
// remainingMs <= 0 时立即完成
func (r *Runner) Start(totalMs, remainingMs int64) string {
	r.mu.Lock()

	r.cancelLocked()
	r.finished = nil

	if remainingMs > totalMs {
		remainingMs = totalMs
	}
	s := &runnerSession{
		id:                uuid.New().String(),
		totalMs:           totalMs,
		remainingMs:       remainingMs,
		lastEmittedSecond: -1,
	}
	r.session = s

	r.logger.Debug("Runner session started",
		"session_id", s.id,
		"total_ms", totalMs,
		"remaining_ms", remainingMs,
	)

	var effects []effect
	if remainingMs <= 0 {
		effects = r.finishLocked(s)
	} else {
		s.deadline = r.clock.Now().Add(time.Duration(remainingMs) * time.Millisecond)
		r.startTickingLocked(s)
		effects, _ = r.pollLocked(s)
	}
	r.mu.Unlock()

	r.run(effects)
	return s.id
}

// Pause 暂停当前会话，返回冻结的剩余时间
// 截止时间已过时会话直接完成，返回 0
func (r *Runner) Pause() (remainingMs int64, ok bool) {
	r.mu.Lock()

	s := r.session
	if s == nil || !s.running {
		r.mu.Unlock()
		return 0, false
	}

	remaining := r.remainingLocked(s)
	if remaining <= 0 {
		effects := r.finishLocked(s)
		r.mu.Unlock()
		r.run(effects)
		return 0, true
	}

	s.cancel()
	s.running = false
	s.remainingMs = remaining
	total := s.totalMs
	r.mu.Unlock()

	r.run([]effect{{"show_progress", func() error {
		return r.alarm.ShowProgress(total, remaining, domainTimer.StatusPaused)
	}}})
	return remaining, true
}

// Resume 以冻结的剩余时间重新计算截止时间并继续计时
func (r *Runner) Resume() bool {
	r.mu.Lock()

	s := r.session
	if s == nil || s.running {
		r.mu.Unlock()
		return false
	}

	s.deadline = r.clock.Now().Add(time.Duration(s.remainingMs) * time.Millisecond)
	s.lastEmittedSecond = -1
	s.generation++
	r.startTickingLocked(s)
	effects, _ := r.pollLocked(s)
	r.mu.Unlock()

	r.run(effects)
	return true
}

// Stop 取消并丢弃当前会话，发出 stopped 更新
func (r *Runner) Stop() bool {
	r.mu.Lock()

	r.finished = nil
	s := r.session
	if s == nil {
		r.mu.Unlock()
		return false
	}

	r.cancelLocked()
	r.emitLocked(Update{
		SessionID:   s.id,
		Kind:        UpdateStopped,
		TotalMs:     s.totalMs,
		RemainingMs: s.remainingMs,
		Generation:  s.generation,
	})
	r.mu.Unlock()

	r.logger.Debug("Runner session stopped", "session_id", s.id)
	r.run([]effect{{"dismiss", r.alarm.Dismiss}})
	return true
}

// Attach 连接观察者，返回用于对账的快照
func (r *Runner) Attach() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attached = true
	return r.snapshotLocked()
}

// Detach 断开观察者；会话继续计时并驱动提醒，但不再转发更新
func (r *Runner) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attached = false
}

// Snapshot 返回当前会话状态
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

// UpdateConfig 更新刷新间隔和振动时长，新间隔从下一次会话开始生效
func (r *Runner) UpdateConfig(cfg Config) {
	cfg = cfg.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.interval = cfg.TickInterval
	r.vibration = cfg.VibrationDuration
}

// Close 停止会话
func (r *Runner) Close() {
	r.mu.Lock()
	r.cancelLocked()
	r.mu.Unlock()
}

func (r *Runner) snapshotLocked() Snapshot {
	if s := r.session; s != nil {
		snap := Snapshot{
			SessionID:   s.id,
			State:       RunnerPaused,
			TotalMs:     s.totalMs,
			RemainingMs: s.remainingMs,
			Generation:  s.generation,
			Attached:    r.attached,
		}
		if s.running {
			snap.State = RunnerRunning
			snap.RemainingMs = max(r.remainingLocked(s), 0)
		}
		return snap
	}
	if r.finished != nil {
		snap := *r.finished
		snap.Attached = r.attached
		return snap
	}
	return Snapshot{State: RunnerNone, Attached: r.attached}
}

// startTickingLocked 启动会话的计时 goroutine
func (r *Runner) startTickingLocked(s *runnerSession) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	ticker := r.clock.NewTicker(r.interval)
	go r.loop(ctx, s.id, ticker)
}

func (r *Runner) loop(ctx context.Context, id string, ticker clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !r.poll(id) {
				return
			}
		}
	}
}

// poll 检查会话 id 的剩余时间，会话已失效时返回 false
func (r *Runner) poll(id string) bool {
	r.mu.Lock()
	s := r.session
	if s == nil || s.id != id || !s.running {
		r.mu.Unlock()
		return false
	}
	effects, alive := r.pollLocked(s)
	r.mu.Unlock()

	r.run(effects)
	return alive
}

// pollLocked 根据截止时间更新剩余时间，整秒变化时转发
func (r *Runner) pollLocked(s *runnerSession) ([]effect, bool) {
	remaining := r.remainingLocked(s)
	if remaining <= 0 {
		return r.finishLocked(s), false
	}

	s.remainingMs = remaining
	second := ceilSeconds(remaining)
	if second == s.lastEmittedSecond {
		return nil, true
	}
	s.lastEmittedSecond = second

	r.emitLocked(Update{
		SessionID:   s.id,
		Kind:        UpdateTick,
		TotalMs:     s.totalMs,
		RemainingMs: remaining,
		Generation:  s.generation,
	})

	total := s.totalMs
	return []effect{{"show_progress", func() error {
		return r.alarm.ShowProgress(total, remaining, domainTimer.StatusRunning)
	}}}, true
}

// finishLocked 完成会话：发出最终更新并触发一次提醒
func (r *Runner) finishLocked(s *runnerSession) []effect {
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
	s.remainingMs = 0
	r.session = nil
	r.finished = &Snapshot{SessionID: s.id, State: RunnerFinished, TotalMs: s.totalMs, Generation: s.generation}

	r.emitLocked(Update{SessionID: s.id, Kind: UpdateFinished, TotalMs: s.totalMs, Generation: s.generation})
	r.logger.Info("Countdown finished", "session_id", s.id, "total_ms", s.totalMs)

	total := s.totalMs
	vibration := r.vibration
	return []effect{
		{"show_finished", func() error { return r.alarm.ShowFinished(total) }},
		{"vibrate", func() error { return r.alarm.Vibrate(vibration) }},
	}
}

func (r *Runner) cancelLocked() {
	if s := r.session; s != nil {
		if s.cancel != nil {
			s.cancel()
		}
		s.running = false
		r.session = nil
	}
}

func (r *Runner) remainingLocked(s *runnerSession) int64 {
	d := s.deadline.Sub(r.clock.Now())
	if d <= 0 {
		return 0
	}
	// 向上取整到毫秒，截止时间之前不会报告 0
	return int64((d + time.Millisecond - 1) / time.Millisecond)
}

// emitLocked 替换语义发送：丢弃未消费的旧更新
func (r *Runner) emitLocked(u Update) {
	if !r.attached {
		return
	}
	select {
	case <-r.updates:
	default:
	}
	select {
	case r.updates <- u:
	default:
	}
}

// effect 在锁外执行的侧通道调用
type effect struct {
	name string
	fn   func() error
}

func (r *Runner) run(effects []effect) {
	for _, e := range effects {
		r.safeCall(e)
	}
}

func (r *Runner) safeCall(e effect) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Alarm side-channel panicked",
				"call", e.name,
				"panic", rec,
			)
		}
	}()

	if err := e.fn(); err != nil {
		r.logger.Warn("Alarm side-channel failed",
			"call", e.name,
			"error", err,
		)
	}
}

func ceilSeconds(ms int64) int64 {
	return (ms + 999) / 1000
}
