package notification

import (
	"sync"

	"github.com/dialtimer/backend/internal/domain/notification"
)

// DefaultHistorySize 默认保留的通知数量
const DefaultHistorySize = 100

// MemoryRepository 内存仓储实现，保留最近 capacity 条通知
// 连续的进度通知只保留最新一条
type MemoryRepository struct {
	mu       sync.RWMutex
	items    []*notification.Notification
	capacity int
}

// NewMemoryRepository 创建内存仓储
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &MemoryRepository{
		items:    make([]*notification.Notification, 0, capacity),
		capacity: capacity,
	}
}

// Save 保存通知
func (r *MemoryRepository) Save(n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if last := len(r.items) - 1; last >= 0 &&
		n.Kind == notification.KindProgress &&
		r.items[last].Kind == notification.KindProgress {
		r.items[last] = n
		return nil
	}

	if len(r.items) >= r.capacity {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, n)
	return nil
}

// FindRecent 按时间倒序返回最近的通知
func (r *MemoryRepository) FindRecent(limit int) ([]*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.items)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]*notification.Notification, 0, n)
	for i := len(r.items) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, r.items[i])
	}
	return result, nil
}

// 编译时检查接口实现
var _ notification.Repository = (*MemoryRepository)(nil)
