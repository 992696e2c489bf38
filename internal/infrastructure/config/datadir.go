package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// EnvDataDir 数据目录环境变量名，支持 ~/ 开头的路径
	EnvDataDir = "DIALTIMER_DATA_DIR"
	// DefaultDataDirName 用户主目录下的默认数据目录名
	DefaultDataDirName = ".dialtimer"
)

var (
	dataDirOnce sync.Once
	dataDirPath string
)

// GetDataDir 数据根目录，存放 config.yaml 和 SQLite 数据库
// 首次调用时解析并缓存，之后修改环境变量不再生效
func GetDataDir() string {
	dataDirOnce.Do(func() {
		dataDirPath = resolveDataDir(os.Getenv(EnvDataDir))
	})
	return dataDirPath
}

// DataPath 数据目录下的文件路径
func DataPath(elem ...string) string {
	return filepath.Join(append([]string{GetDataDir()}, elem...)...)
}

// ResetDataDir 清除缓存，仅供测试使用
func ResetDataDir() {
	dataDirOnce = sync.Once{}
	dataDirPath = ""
}

func resolveDataDir(override string) string {
	override = strings.TrimSpace(override)
	homeDir, homeErr := os.UserHomeDir()

	if override != "" {
		if override == "~" || strings.HasPrefix(override, "~/") {
			if homeErr != nil {
				return filepath.Clean(strings.TrimPrefix(strings.TrimPrefix(override, "~"), "/"))
			}
			return filepath.Join(homeDir, strings.TrimPrefix(override, "~"))
		}
		return filepath.Clean(override)
	}

	if homeErr != nil {
		// 无法获取主目录时使用工作目录
		return DefaultDataDirName
	}
	return filepath.Join(homeDir, DefaultDataDirName)
}
