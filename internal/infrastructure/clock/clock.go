// Package clock 提供可替换的时间来源
// 生产环境使用系统时间，测试使用 Fake 手动推进时间
package clock

import "time"

// Clock 时间操作抽象
type Clock interface {
	// Now 返回当前时间
	Now() time.Time
	// AfterFunc 在 d 之后于独立 goroutine 中调用 f
	AfterFunc(d time.Duration, f func()) Timer
	// NewTicker 创建周期为 d 的 Ticker
	NewTicker(d time.Duration) Ticker
}

// Timer 可取消的延迟调用
type Timer interface {
	// Stop 阻止调用发生，已触发或已停止时返回 false
	Stop() bool
}

// Ticker 周期性时间通道
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// New 返回基于 time 包的系统时钟
func New() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *realTicker) Stop() {
	t.ticker.Stop()
}
