// Package timer 定义倒计时器的领域模型：角度/时间换算、状态与状态机
package timer

import "math"

// 表盘几何常量
// 有效扫过范围从 135° 顺时针经过 180°、270°、0° 到 45°，共 270°
const (
	// StartAngle 起点角度（左下方）
	StartAngle = 135.0
	// EndAngle 终点角度（右下方）
	EndAngle = 45.0
	// TotalAngle 有效扫过角度
	TotalAngle = 270.0

	// MaxTimeMinutes 最大计时时长（分钟）
	MaxTimeMinutes = 45
	// MaxTimeMs 最大计时时长（毫秒）
	MaxTimeMs int64 = MaxTimeMinutes * 60 * 1000
)

// CoordinateToAngle 将触摸坐标转换为角度，结果在 [0, 360) 内
func CoordinateToAngle(x, y, centerX, centerY float64) float64 {
	degrees := math.Atan2(y-centerY, x-centerX) * 180 / math.Pi
	return normalizeDegrees(degrees)
}

// ConstrainAngle 将角度约束到有效范围
// 缺口 (45°, 135°) 内的角度吸附到较近的边界，等距时取 135°
// NaN 和无穷大返回起点角度
func ConstrainAngle(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return StartAngle
	}
	angle = normalizeDegrees(angle)
	if IsValidAngle(angle) {
		return angle
	}
	if StartAngle-angle <= angle-EndAngle {
		return StartAngle
	}
	return EndAngle
}

// IsValidAngle 检查角度是否落在表盘有效范围内
func IsValidAngle(angle float64) bool {
	return angle >= StartAngle || angle <= EndAngle
}

// AngleToTime 将角度转换为时长（毫秒）
func AngleToTime(angle float64) int64 {
	constrained := ConstrainAngle(angle)

	var relative float64
	if constrained >= StartAngle {
		relative = constrained - StartAngle
	} else {
		// 跨越 360°：0° - 45° 对应相对角度 225° - 270°
		relative = (360 - StartAngle) + constrained
	}

	return int64(math.Round(relative / TotalAngle * float64(MaxTimeMs)))
}

// TimeToAngle 将时长（毫秒）转换为角度
func TimeToAngle(timeMs int64) float64 {
	clamped := ClampTime(timeMs)
	return sweepToAngle(float64(clamped) / float64(MaxTimeMs))
}

// ProgressToAngle 根据进度 [0, 1] 计算拖拽点角度
func ProgressToAngle(progress float64) float64 {
	return sweepToAngle(clampUnit(progress))
}

// CalculateProgress 计算进度，结果在 [0, 1] 内
func CalculateProgress(elapsedMs, totalMs int64) float64 {
	if totalMs <= 0 {
		return 0
	}
	return clampUnit(float64(elapsedMs) / float64(totalMs))
}

// ClampTime 将时长限制在 [0, MaxTimeMs]
func ClampTime(timeMs int64) int64 {
	switch {
	case timeMs < 0:
		return 0
	case timeMs > MaxTimeMs:
		return MaxTimeMs
	default:
		return timeMs
	}
}

func sweepToAngle(ratio float64) float64 {
	angle := StartAngle + ratio*TotalAngle
	if angle >= 360 {
		angle -= 360
	}
	return angle
}

func normalizeDegrees(degrees float64) float64 {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	if degrees >= 360 {
		degrees -= 360
	}
	return degrees
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
