package notification

// Repository 通知仓储接口
type Repository interface {
	Save(notification *Notification) error
	// FindRecent 按时间倒序返回最近的通知，limit <= 0 时返回全部
	FindRecent(limit int) ([]*Notification, error)
}
