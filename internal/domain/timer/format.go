package timer

import (
	"fmt"
	"math"
)

// FormatTime 格式化为 分:秒，如 "25:30"
func FormatTime(timeMs int64) string {
	minutes, seconds := splitMinutesSeconds(timeMs)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatTimeDetailed 格式化为详细格式，如 "25分30秒"
func FormatTimeDetailed(timeMs int64) string {
	minutes, seconds := splitMinutesSeconds(timeMs)
	switch {
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%d分%d秒", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%d分钟", minutes)
	case seconds > 0:
		return fmt.Sprintf("%d秒", seconds)
	default:
		return "0秒"
	}
}

// FormatTimeShort 格式化为简短格式，如 "25m" 或 "30s"
func FormatTimeShort(timeMs int64) string {
	minutes, seconds := splitMinutesSeconds(timeMs)
	switch {
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	case seconds > 0:
		return fmt.Sprintf("%ds", seconds)
	default:
		return "0s"
	}
}

// FormatProgress 格式化进度百分比，如 "75%"
func FormatProgress(progress float64) string {
	return fmt.Sprintf("%d%%", int(clampUnit(progress)*100))
}

// MinutesToMs 分钟转毫秒，结果限制在 [0, MaxTimeMs]
// 在浮点域内先限制范围，超大输入不会溢出成负数
func MinutesToMs(minutes float64) int64 {
	switch {
	case math.IsNaN(minutes) || minutes <= 0:
		return 0
	case minutes >= MaxTimeMinutes:
		return MaxTimeMs
	}
	return int64(minutes * 60 * 1000)
}

// MsToMinutes 毫秒转分钟
func MsToMinutes(timeMs int64) float64 {
	return float64(timeMs) / (60 * 1000)
}

// RoundToNearestMinute 四舍五入到最近的整分钟
func RoundToNearestMinute(timeMs int64) int64 {
	return int64(math.Round(MsToMinutes(timeMs))) * 60 * 1000
}

// IsValidTime 检查时长是否在 [0, MaxTimeMs] 内
func IsValidTime(timeMs int64) bool {
	return timeMs >= 0 && timeMs <= MaxTimeMs
}

// TimeSuggestions 常用时长建议（分钟）
func TimeSuggestions() []int {
	return []int{1, 5, 10, 15, 20, 25, 30, 35, 40, 45}
}

func splitMinutesSeconds(timeMs int64) (int64, int64) {
	if timeMs < 0 {
		timeMs = 0
	}
	totalSeconds := timeMs / 1000
	return totalSeconds / 60, totalSeconds % 60
}
