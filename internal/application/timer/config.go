package timer

import (
	"time"

	"github.com/dialtimer/backend/internal/infrastructure/config"
)

// Config 计时会话参数
type Config struct {
	// TickInterval 后台计时器内部刷新间隔
	TickInterval time.Duration
	// KeepAwakeAfterFinish 计时完成后保持屏幕常亮的时长
	KeepAwakeAfterFinish time.Duration
	// VibrationDuration 完成提醒的振动时长
	VibrationDuration time.Duration
	// DivergenceThreshold 重新连接时判定本地状态与后台计时器不一致的阈值
	DivergenceThreshold time.Duration
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		TickInterval:         100 * time.Millisecond,
		KeepAwakeAfterFinish: 5 * time.Second,
		VibrationDuration:    500 * time.Millisecond,
		DivergenceThreshold:  time.Second,
	}
}

// withDefaults 用默认值补齐非正数字段
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.KeepAwakeAfterFinish < 0 {
		c.KeepAwakeAfterFinish = d.KeepAwakeAfterFinish
	}
	if c.VibrationDuration <= 0 {
		c.VibrationDuration = d.VibrationDuration
	}
	if c.DivergenceThreshold <= 0 {
		c.DivergenceThreshold = d.DivergenceThreshold
	}
	return c
}

// ConfigFromSettings 将配置文件中的计时参数转换为会话参数
func ConfigFromSettings(tc config.TimerConfig) Config {
	return Config{
		TickInterval:         tc.TickInterval,
		KeepAwakeAfterFinish: tc.KeepAwakeAfterFinish,
		VibrationDuration:    tc.Vibration,
		DivergenceThreshold:  tc.DivergenceThreshold,
	}.withDefaults()
}

// ProvideConfig 从应用配置提供会话参数
func ProvideConfig(cfg *config.Config) Config {
	return ConfigFromSettings(cfg.Timer)
}
