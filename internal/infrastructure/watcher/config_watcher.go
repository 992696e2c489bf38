package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dialtimer/backend/internal/domain/events"
	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// DefaultDebounceDelay 默认防抖延迟
const DefaultDebounceDelay = 300 * time.Millisecond

// ReloadFunc 配置重新加载成功后的回调
type ReloadFunc func(cfg *config.Config)

// ConfigWatcher 监听配置文件变更并热加载
// 监听配置文件所在目录而不是文件本身，编辑器常以重命名方式替换文件
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	eventBus events.EventBus
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu        sync.Mutex
	handlers  []ReloadFunc
	timer     *time.Timer
	stopCh    chan struct{}
	wg        sync.WaitGroup
	started   bool
	stopped   bool
	lastError error
}

// NewConfigWatcher 创建配置文件监听器
func NewConfigWatcher(path string, debounce time.Duration, eventBus events.EventBus) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}

	return &ConfigWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		eventBus: eventBus,
		watcher:  w,
		logger:   log.NewModuleLogger("watcher", "config_watcher"),
		stopCh:   make(chan struct{}),
	}, nil
}

// OnReload 注册重新加载回调
func (cw *ConfigWatcher) OnReload(fn ReloadFunc) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.handlers = append(cw.handlers, fn)
}

// Path 监听的配置文件路径
func (cw *ConfigWatcher) Path() string {
	return cw.path
}

// LastError 最近一次加载失败的错误，成功加载后清空
func (cw *ConfigWatcher) LastError() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.lastError
}

// Start 启动监听，目录不存在时返回错误
func (cw *ConfigWatcher) Start() error {
	cw.mu.Lock()
	if cw.started {
		cw.mu.Unlock()
		return nil
	}
	cw.started = true
	cw.mu.Unlock()

	dir := filepath.Dir(cw.path)
	if err := cw.watcher.Add(dir); err != nil {
		return err
	}

	cw.logger.Info("Starting config watcher", "path", cw.path)

	cw.wg.Add(1)
	go cw.watchLoop()
	return nil
}

// Stop 停止监听
func (cw *ConfigWatcher) Stop() {
	cw.mu.Lock()
	if cw.stopped {
		cw.mu.Unlock()
		return
	}
	cw.stopped = true
	if cw.timer != nil {
		cw.timer.Stop()
		cw.timer = nil
	}
	cw.mu.Unlock()

	close(cw.stopCh)
	cw.watcher.Close()
	cw.wg.Wait()

	cw.logger.Info("Config watcher stopped")
}

// watchLoop 事件监听循环
func (cw *ConfigWatcher) watchLoop() {
	defer cw.wg.Done()

	for {
		select {
		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleFsEvent(event)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Watcher error", "error", err)
		}
	}
}

// handleFsEvent 只关心目标文件的写入、创建和重命名
func (cw *ConfigWatcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != cw.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.stopped {
		return
	}
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, cw.reload)
}

// reload 重新加载配置，失败时保留当前配置
func (cw *ConfigWatcher) reload() {
	cfg, err := config.Load(cw.path)

	cw.mu.Lock()
	cw.timer = nil
	cw.lastError = err
	if cw.stopped {
		cw.mu.Unlock()
		return
	}
	handlers := make([]ReloadFunc, len(cw.handlers))
	copy(handlers, cw.handlers)
	cw.mu.Unlock()

	if err != nil {
		cw.logger.Warn("Failed to reload config, keeping current settings",
			"path", cw.path,
			"error", err,
		)
		return
	}

	for _, fn := range handlers {
		fn(cfg)
	}

	if cw.eventBus != nil {
		cw.eventBus.Publish(&events.ConfigEvent{
			Path:      cw.path,
			EventTime: time.Now(),
		})
	}

	cw.logger.Info("Config reloaded", "path", cw.path)
}
