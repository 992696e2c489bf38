package timer

import (
	"sync"
	"time"

	"github.com/dialtimer/backend/internal/infrastructure/clock"
)

// Scheduler 按键管理可取消的延迟任务
// 同一键重复调度会取消之前的任务
type Scheduler struct {
	mu    sync.Mutex
	clock clock.Clock
	tasks map[string]*scheduledTask
}

type scheduledTask struct {
	timer clock.Timer
}

// NewScheduler 创建延迟任务调度器
func NewScheduler(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		clock: clk,
		tasks: make(map[string]*scheduledTask),
	}
}

// Schedule 在 d 之后执行 fn
func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tasks[key]; ok {
		existing.timer.Stop()
	}

	task := &scheduledTask{}
	s.tasks[key] = task
	task.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		current, ok := s.tasks[key]
		if !ok || current != task {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()

		fn()
	})
}

// Cancel 取消键对应的任务，任务不存在或已执行时返回 false
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[key]
	if !ok {
		return false
	}
	delete(s.tasks, key)
	task.timer.Stop()
	return true
}

// CancelAll 取消所有任务
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, task := range s.tasks {
		task.timer.Stop()
		delete(s.tasks, key)
	}
}

// Pending 检查键是否有待执行的任务
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.tasks[key]
	return ok
}
