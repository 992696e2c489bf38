// Package log 基于 log/slog 的日志封装，按模块和组件区分 logger
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dialtimer/backend/internal/infrastructure/log/handler"
)

// ServiceName 日志中的服务标识
const ServiceName = "dialtimer-backend"

// 全局 logger 实例
var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	debugMode     bool
	outputFile    *os.File
)

// Init 初始化日志系统
// 文件输出打开失败时回退到标准输出
func Init(cfg *Config) {
	if cfg == nil {
		cfg = NewConfigFromEnv()
	}

	out, file, err := openOutput(cfg.Output)
	if err != nil {
		out = os.Stdout
	}

	mu.Lock()
	if outputFile != nil {
		outputFile.Close()
	}
	outputFile = file
	defaultLogger = slog.New(newHandler(cfg, out).WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
	}))
	debugMode = strings.ToLower(cfg.Level) == "debug"
	logger := defaultLogger
	mu.Unlock()

	slog.SetDefault(logger)

	if err != nil {
		logger.Warn("Failed to open log output, using stdout",
			"output", cfg.Output,
			"error", err,
		)
	}
}

// Close 关闭日志文件（如有）
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if outputFile != nil {
		outputFile.Close()
		outputFile = nil
	}
}

// newHandler 根据格式选择处理器
func newHandler(cfg *Config, out io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	if strings.ToLower(cfg.Format) == "json" {
		return slog.NewJSONHandler(out, opts)
	}
	return handler.NewConsoleHandler(out, opts)
}

// openOutput 解析输出目标：stdout、stderr 或 file:/path/to/log
func openOutput(output string) (io.Writer, *os.File, error) {
	switch {
	case output == "" || output == "stdout":
		return os.Stdout, nil, nil
	case output == "stderr":
		return os.Stderr, nil, nil
	case strings.HasPrefix(output, "file:"):
		path := strings.TrimPrefix(output, "file:")
		if path == "" {
			return nil, nil, fmt.Errorf("empty log file path")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, f, nil
	default:
		return nil, nil, fmt.Errorf("unsupported log output %q", output)
	}
}

// GetLogger 获取默认 logger
func GetLogger() *slog.Logger {
	mu.Lock()
	logger := defaultLogger
	mu.Unlock()
	if logger == nil {
		// 未初始化，使用默认配置
		Init(nil)
		mu.Lock()
		logger = defaultLogger
		mu.Unlock()
	}
	return logger
}

// With 创建带有额外字段的 logger
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// NewModuleLogger 为特定模块创建 logger
func NewModuleLogger(module, component string) *slog.Logger {
	return GetLogger().With(
		slog.String("module", module),
		slog.String("component", component),
	)
}

// IsDebugMode 检查是否为调试模式
func IsDebugMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugMode
}

// parseLevel 解析日志级别
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
