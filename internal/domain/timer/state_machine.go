package timer

import "time"

// StateMachine 计时器状态机
// 持有唯一的 TimerState，所有修改都通过命名的状态转换完成
// 非并发安全：调用方需保证串行访问
type StateMachine struct {
	state          TimerState
	prefs          *Preferences
	now            func() time.Time
	onPersistError func(error)
}

// Option 状态机选项
type Option func(*StateMachine)

// WithClock 指定时间来源
func WithClock(now func() time.Time) Option {
	return func(m *StateMachine) {
		m.now = now
	}
}

// WithPersistErrorHandler 指定持久化失败的回调
// 持久化失败不影响状态转换
func WithPersistErrorHandler(fn func(error)) Option {
	return func(m *StateMachine) {
		m.onPersistError = fn
	}
}

// NewStateMachine 创建状态机，初始状态来自持久化设置或默认值
func NewStateMachine(prefs *Preferences, opts ...Option) *StateMachine {
	m := &StateMachine{
		prefs: prefs,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.state = m.initialState()
	return m
}

// State 返回当前状态快照
func (m *StateMachine) State() TimerState {
	return m.state
}

// SetTime 设置计时时长，仅在空闲状态有效
func (m *StateMachine) SetTime(timeMs int64) bool {
	if m.state.Status != StatusIdle {
		return false
	}
	clamped := ClampTime(timeMs)
	m.commit(idleState(clamped, TimeToAngle(clamped)))
	return true
}

// SetAngle 通过拖拽角度设置时长，仅在空闲状态有效
func (m *StateMachine) SetAngle(angle float64) bool {
	if m.state.Status != StatusIdle {
		return false
	}
	constrained := ConstrainAngle(angle)
	m.commit(idleState(AngleToTime(constrained), constrained))
	return true
}

// Start 开始或继续计时
func (m *StateMachine) Start() bool {
	if !m.state.CanStart() || m.state.TotalTimeMs <= 0 {
		return false
	}
	next := m.state
	next.Status = StatusRunning
	next.KeepScreenOn = true
	m.commit(next)
	return true
}

// Pause 暂停计时
func (m *StateMachine) Pause() bool {
	if !m.state.CanPause() {
		return false
	}
	next := m.state
	next.Status = StatusPaused
	next.KeepScreenOn = false
	m.commit(next)
	return true
}

// Stop 停止计时并恢复到设置的时长
func (m *StateMachine) Stop() bool {
	if !m.state.CanStop() {
		return false
	}
	m.commit(m.resetState())
	return true
}

// Reset 重置计时器，任何状态下都允许
func (m *StateMachine) Reset() bool {
	m.commit(m.resetState())
	return true
}

// Tick 应用后台计时器报告的剩余时间，仅在计时中有效
// 剩余时间 <= 0 时进入完成状态
func (m *StateMachine) Tick(remainingMs int64) bool {
	if m.state.Status != StatusRunning {
		return false
	}

	next := m.state
	if remainingMs <= 0 {
		next.Status = StatusFinished
		next.RemainingTimeMs = 0
		next.Progress = 1
		next.Angle = ProgressToAngle(1)
		next.KeepScreenOn = true
		m.commit(next)
		return true
	}

	if remainingMs > next.TotalTimeMs {
		remainingMs = next.TotalTimeMs
	}
	next.RemainingTimeMs = remainingMs
	next.Progress = CalculateProgress(next.TotalTimeMs-remainingMs, next.TotalTimeMs)
	next.Angle = ProgressToAngle(next.Progress)
	m.commit(next)
	return true
}

// SetKeepScreenOn 设置屏幕常亮标记
func (m *StateMachine) SetKeepScreenOn(on bool) bool {
	if m.state.KeepScreenOn == on {
		return false
	}
	next := m.state
	next.KeepScreenOn = on
	m.commit(next)
	return true
}

// ClearData 清除持久化设置并恢复默认状态
func (m *StateMachine) ClearData() {
	if err := m.prefs.Clear(); err != nil {
		m.reportPersistError(err)
	}
	m.state = m.initialState()
}

// SavedSettings 返回持久化的设置
func (m *StateMachine) SavedSettings() Settings {
	settings, err := m.prefs.Load()
	if err != nil {
		m.reportPersistError(err)
	}
	return settings
}

func (m *StateMachine) resetState() TimerState {
	total := m.state.TotalTimeMs
	return idleState(total, TimeToAngle(total))
}

func (m *StateMachine) initialState() TimerState {
	settings, err := m.prefs.Load()
	if err != nil {
		m.reportPersistError(err)
	}
	state := idleState(settings.TotalTimeMs, settings.Angle)
	state.LastUpdateTime = m.now()
	return state
}

// commit 写入新状态，回到空闲状态时持久化时长和角度
func (m *StateMachine) commit(next TimerState) {
	next.LastUpdateTime = m.now()
	m.state = next

	if next.Status == StatusIdle {
		err := m.prefs.Save(Settings{TotalTimeMs: next.TotalTimeMs, Angle: next.Angle})
		if err != nil {
			m.reportPersistError(err)
		}
	}
}

func (m *StateMachine) reportPersistError(err error) {
	if m.onPersistError != nil {
		m.onPersistError(err)
	}
}
