package timer

import (
	"sync"

	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
)

// Broadcaster 向订阅者分发状态快照
// 每个订阅者持有容量为 1 的通道，新快照替换未消费的旧快照
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan domainTimer.TimerState
	nextID int
	last   *domainTimer.TimerState
}

// NewBroadcaster 创建快照分发器
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan domainTimer.TimerState),
	}
}

// Subscribe 订阅状态快照，已有快照时立即投递最新值
func (b *Broadcaster) Subscribe() (<-chan domainTimer.TimerState, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domainTimer.TimerState, 1)
	b.subs[id] = ch
	if b.last != nil {
		ch <- *b.last
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish 发布快照
func (b *Broadcaster) Publish(state domainTimer.TimerState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = &state
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}

// Count 当前订阅者数量
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close 关闭所有订阅
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
