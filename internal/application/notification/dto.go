package notification

// NotificationDTO 通知响应
type NotificationDTO struct {
	ID              string `json:"id"`
	Kind            string `json:"kind"`
	Title           string `json:"title,omitempty"`
	Message         string `json:"message,omitempty"`
	TotalTimeMs     int64  `json:"total_time_ms"`
	RemainingTimeMs int64  `json:"remaining_time_ms"`
	ElapsedTimeMs   int64  `json:"elapsed_time_ms"`
	Ongoing         bool   `json:"ongoing"`
	VibrationMs     int64  `json:"vibration_ms,omitempty"`
	CreatedAt       string `json:"createdAt"`
}
