package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/dialtimer/backend/internal/domain/events"
	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
	"github.com/dialtimer/backend/internal/infrastructure/clock"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type progressCall struct {
	totalMs     int64
	remainingMs int64
	status      domainTimer.Status
}

// recordingAlarm 记录侧通道调用
type recordingAlarm struct {
	mu         sync.Mutex
	progress   []progressCall
	finished   []int64
	vibrations []time.Duration
	dismissed  int
	err        error
	panics     bool
}

func (a *recordingAlarm) ShowProgress(totalMs, remainingMs int64, status domainTimer.Status) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.panics {
		panic("notification service crashed")
	}
	a.progress = append(a.progress, progressCall{totalMs, remainingMs, status})
	return a.err
}

func (a *recordingAlarm) ShowFinished(totalMs int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.panics {
		panic("notification service crashed")
	}
	a.finished = append(a.finished, totalMs)
	return a.err
}

func (a *recordingAlarm) Vibrate(d time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.panics {
		panic("vibrator crashed")
	}
	a.vibrations = append(a.vibrations, d)
	return a.err
}

func (a *recordingAlarm) Dismiss() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dismissed++
	return a.err
}

func (a *recordingAlarm) vibrationCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.vibrations)
}

func (a *recordingAlarm) finishedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.finished)
}

func (a *recordingAlarm) lastProgress() (progressCall, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.progress) == 0 {
		return progressCall{}, false
	}
	return a.progress[len(a.progress)-1], true
}

// mapStore 内存设置存储
type mapStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string]string)}
}

func (s *mapStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *mapStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}

func (s *mapStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// recordingBus 同步记录发布的事件
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Subscribe(events.EventType, events.Handler) func() { return func() {} }

func (b *recordingBus) SubscribeMultiple([]events.EventType, events.Handler) func() {
	return func() {}
}

func (b *recordingBus) Publish(event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) Close() {}

func (b *recordingBus) types() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]events.EventType, 0, len(b.events))
	for _, e := range b.events {
		types = append(types, e.Type())
	}
	return types
}

// harness 协调器测试环境，手动驱动后台更新
type harness struct {
	t      *testing.T
	clock  *clock.Fake
	alarm  *recordingAlarm
	store  *mapStore
	bus    *recordingBus
	runner *Runner
	c      *Coordinator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:     t,
		clock: clock.NewFake(epoch),
		alarm: &recordingAlarm{},
		store: newMapStore(),
		bus:   &recordingBus{},
	}
	cfg := DefaultConfig()
	h.runner = NewRunner(h.clock, h.alarm, cfg)
	machine := ProvideStateMachine(h.store, h.clock)
	h.c = NewCoordinator(machine, h.runner, NewScheduler(h.clock), NewBroadcaster(), h.bus, h.clock, cfg)
	t.Cleanup(h.c.Close)
	return h
}

// advance 推进时间并同步处理后台更新
func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.runner.poll(h.sessionID())
	h.pump()
}

// pump 处理所有待处理的后台更新
func (h *harness) pump() {
	for {
		select {
		case u := <-h.runner.Updates():
			h.c.HandleUpdate(u)
		default:
			return
		}
	}
}

func (h *harness) sessionID() string {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.sessionID
}

func (h *harness) state() domainTimer.TimerState {
	return h.c.State()
}
