package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvHTTPPort HTTP 端口环境变量名
	EnvHTTPPort = "DIALTIMER_HTTP_PORT"
	// EnvDiscovery 局域网广播开关环境变量名
	EnvDiscovery = "DIALTIMER_DISCOVERY"
	// ConfigFileName 数据目录下的配置文件名
	ConfigFileName = "config.yaml"
	// DatabaseFileName 数据目录下的默认 SQLite 文件名
	DatabaseFileName = "dialtimer.db"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Timer     TimerConfig     `yaml:"timer"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"` // 固定端口，用于单例锁
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path SQLite 文件路径，留空使用数据目录下的 dialtimer.db
	Path string `yaml:"path"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
}

// TimerConfig 计时参数，支持热更新
type TimerConfig struct {
	// TickInterval 后台计时器内部刷新间隔
	TickInterval time.Duration `yaml:"tick_interval"`
	// KeepAwakeAfterFinish 完成后保持屏幕常亮的时长
	KeepAwakeAfterFinish time.Duration `yaml:"keep_awake_after_finish"`
	// Vibration 完成提醒的振动时长
	Vibration time.Duration `yaml:"vibration"`
	// DivergenceThreshold 重新连接时的对账阈值
	DivergenceThreshold time.Duration `yaml:"divergence_threshold"`
	// NotificationHistory 保留的通知条数
	NotificationHistory int `yaml:"notification_history"`
}

// LifecycleConfig 展示端在线检测配置
type LifecycleConfig struct {
	// HeartbeatTimeout 展示端超过该时间无心跳视为离线
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
	// CheckInterval 离线检查间隔
	CheckInterval time.Duration `yaml:"check_interval"`
}

// DiscoveryConfig 局域网服务广播配置
type DiscoveryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
	Service  string `yaml:"service"`
	Domain   string `yaml:"domain"`
}

// NewConfig 创建配置（默认值 + 环境变量）
func NewConfig() *Config {
	cfg := defaultConfig()
	cfg.applyEnv()
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: ":19970",
		},
		Database: DatabaseConfig{
			Path: "",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Timer: TimerConfig{
			TickInterval:         100 * time.Millisecond,
			KeepAwakeAfterFinish: 5 * time.Second,
			Vibration:            500 * time.Millisecond,
			DivergenceThreshold:  time.Second,
			NotificationHistory:  100,
		},
		Lifecycle: LifecycleConfig{
			HeartbeatTimeout: 60 * time.Second,
			CheckInterval:    10 * time.Second,
		},
		Discovery: DiscoveryConfig{
			Enabled:  false,
			Instance: "dialtimer",
			Service:  "_dialtimer._tcp",
			Domain:   "local.",
		},
	}
}

// applyEnv 环境变量覆盖
func (c *Config) applyEnv() {
	if port := os.Getenv(EnvHTTPPort); port != "" {
		c.Server.HTTPPort = port
	}
	if v := os.Getenv(EnvDiscovery); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Discovery.Enabled = enabled
		}
	}
}

// Load 读取配置文件并叠加到默认值上，环境变量优先
// 文件不存在时返回默认配置
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Server.HTTPPort == "" {
		return errors.New("server.http_port is required")
	}
	if c.Timer.TickInterval <= 0 {
		return errors.New("timer.tick_interval must be positive")
	}
	if c.Timer.TickInterval > time.Second {
		return errors.New("timer.tick_interval must not exceed 1s")
	}
	if c.Timer.KeepAwakeAfterFinish < 0 {
		return errors.New("timer.keep_awake_after_finish must not be negative")
	}
	if c.Timer.DivergenceThreshold <= 0 {
		return errors.New("timer.divergence_threshold must be positive")
	}
	if c.Lifecycle.HeartbeatTimeout <= 0 || c.Lifecycle.CheckInterval <= 0 {
		return errors.New("lifecycle timeouts must be positive")
	}
	return nil
}

// FilePath 配置文件路径
func FilePath() string {
	return DataPath(ConfigFileName)
}

// ProvideConfig 从数据目录加载配置
func ProvideConfig() (*Config, error) {
	return Load(FilePath())
}

// DatabasePath 数据库文件路径
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return DataPath(DatabaseFileName)
}

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig {
	return &cfg.WebSocket
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}
