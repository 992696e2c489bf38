package timer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// 持久化键，位于 PrefsNamespace 命名空间下
const (
	PrefsNamespace   = "timer_prefs"
	KeyLastTotalTime = "last_total_time"
	KeyLastAngle     = "last_angle"

	// DefaultTimeMs 默认时长（5 分钟）
	DefaultTimeMs int64 = 5 * 60 * 1000

	// angleTolerance 持久化角度与时长的最大允许偏差（毫秒）
	angleTolerance int64 = 1000
)

// SettingsStore 键值存储接口（外部协作者）
// Get 在键不存在时返回 ok=false
type SettingsStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Clear() error
}

// Settings 上次使用的时长和角度
type Settings struct {
	TotalTimeMs int64   `json:"total_time_ms"`
	Angle       float64 `json:"angle"`
}

// DefaultSettings 默认设置：5 分钟及其对应角度
func DefaultSettings() Settings {
	return Settings{
		TotalTimeMs: DefaultTimeMs,
		Angle:       TimeToAngle(DefaultTimeMs),
	}
}

// Sanitize 校正越界或不一致的设置，adjusted 表示是否发生了修正
func (s Settings) Sanitize() (result Settings, adjusted bool) {
	result.TotalTimeMs = ClampTime(s.TotalTimeMs)
	result.Angle = s.Angle

	if math.IsNaN(s.Angle) || math.IsInf(s.Angle, 0) || !IsValidAngle(s.Angle) || s.Angle < 0 || s.Angle >= 360 {
		result.Angle = TimeToAngle(result.TotalTimeMs)
	} else if diff := AngleToTime(s.Angle) - result.TotalTimeMs; diff > angleTolerance || diff < -angleTolerance {
		// 角度与时长不一致时以时长为准
		result.Angle = TimeToAngle(result.TotalTimeMs)
	}

	return result, result != s
}

// Preferences 基于 SettingsStore 的设置读写
type Preferences struct {
	store SettingsStore
}

// NewPreferences 创建设置读写器
func NewPreferences(store SettingsStore) *Preferences {
	return &Preferences{store: store}
}

// Load 读取上次使用的设置
// 缺失的键使用默认值；读取失败时返回默认值和错误
func (p *Preferences) Load() (Settings, error) {
	settings := DefaultSettings()
	if p == nil || p.store == nil {
		return settings, nil
	}

	var errs []error

	if raw, ok, err := p.store.Get(KeyLastTotalTime); err != nil {
		errs = append(errs, fmt.Errorf("failed to read %s: %w", KeyLastTotalTime, err))
	} else if ok {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", KeyLastTotalTime, raw, err))
		} else {
			settings.TotalTimeMs = v
		}
	}

	if raw, ok, err := p.store.Get(KeyLastAngle); err != nil {
		errs = append(errs, fmt.Errorf("failed to read %s: %w", KeyLastAngle, err))
	} else if ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", KeyLastAngle, raw, err))
		} else {
			settings.Angle = v
		}
	} else {
		settings.Angle = TimeToAngle(settings.TotalTimeMs)
	}

	settings, _ = settings.Sanitize()
	return settings, errors.Join(errs...)
}

// Save 保存设置
func (p *Preferences) Save(s Settings) error {
	if p == nil || p.store == nil {
		return nil
	}
	if err := p.store.Set(KeyLastTotalTime, strconv.FormatInt(s.TotalTimeMs, 10)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyLastTotalTime, err)
	}
	if err := p.store.Set(KeyLastAngle, strconv.FormatFloat(s.Angle, 'g', -1, 64)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyLastAngle, err)
	}
	return nil
}

// Clear 清除所有保存的设置
func (p *Preferences) Clear() error {
	if p == nil || p.store == nil {
		return nil
	}
	return p.store.Clear()
}
