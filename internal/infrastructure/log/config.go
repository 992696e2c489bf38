package log

import (
	"os"
	"strconv"
	"strings"
)

// 日志相关环境变量
const (
	EnvLevel     = "LOG_LEVEL"
	EnvFormat    = "LOG_FORMAT"
	EnvOutput    = "LOG_OUTPUT"
	EnvAddSource = "LOG_ADD_SOURCE"
	// EnvMode 为 development 时强制使用调试配置
	EnvMode = "ENV"
)

// Config 日志配置
type Config struct {
	// Level debug、info、warn、error，无法识别时按 info
	Level string `json:"level"`
	// Format console 为彩色文本，json 为每行一个 JSON 对象
	Format string `json:"format"`
	// Output stdout、stderr 或 file:/path/to/log（追加写入）
	Output string `json:"output"`
	// AddSource 输出调用位置
	AddSource bool `json:"add_source"`
}

// DefaultConfig 默认配置：info 级别，彩色文本输出到 stdout
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	}
}

// NewConfigFromEnv 在默认配置上应用环境变量
// ENV=development 时忽略 LOG_LEVEL 和 LOG_FORMAT，使用 debug 级别的彩色输出并带调用位置
func NewConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := envValue(EnvLevel); v != "" {
		cfg.Level = strings.ToLower(v)
	}
	if v := envValue(EnvFormat); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := envValue(EnvOutput); v != "" {
		cfg.Output = v
	}
	cfg.AddSource = getEnvBool(EnvAddSource, cfg.AddSource)

	if strings.EqualFold(envValue(EnvMode), "development") {
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	}
	return cfg
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// getEnvBool 解析布尔环境变量，未设置或无法解析时返回默认值
func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(envValue(key))
	if err != nil {
		return defaultValue
	}
	return v
}
