// Package discovery 通过 mDNS 在局域网内广播展示端接入地址
package discovery

import (
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"

	"github.com/grandcat/zeroconf"

	"github.com/dialtimer/backend/internal/infrastructure/config"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// ServiceInfo 广播的服务信息
type ServiceInfo struct {
	InstanceName string
	ServiceType  string
	Domain       string
	Port         int
	TxtRecords   map[string]string
}

// records 以 key=value 形式返回 TXT 记录，按键排序
func (s ServiceInfo) records() []string {
	keys := make([]string, 0, len(s.TxtRecords))
	for k := range s.TxtRecords {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, s.TxtRecords[k]))
	}
	return out
}

// BuildServiceInfo 根据配置构建服务信息
func BuildServiceInfo(cfg config.DiscoveryConfig, port int, version string) ServiceInfo {
	return ServiceInfo{
		InstanceName: cfg.Instance,
		ServiceType:  cfg.Service,
		Domain:       cfg.Domain,
		Port:         port,
		TxtRecords: map[string]string{
			"version": version,
			"api":     "/api/v1",
			"ws":      "/ws/timer",
		},
	}
}

// Advertiser mDNS 服务广播器
type Advertiser struct {
	mu      sync.RWMutex
	server  *zeroconf.Server
	info    *ServiceInfo
	running bool
	logger  *slog.Logger
}

// NewAdvertiser 创建广播器
func NewAdvertiser() *Advertiser {
	return &Advertiser{
		logger: log.NewModuleLogger("discovery", "advertiser"),
	}
}

// Start 开始广播服务，只在物理网卡上广播
func (a *Advertiser) Start(info ServiceInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("advertiser is already running")
	}

	interfaces, err := LANInterfaces()
	if err != nil {
		return err
	}

	var ips []string
	var ifaces []net.Interface
	for _, iface := range interfaces {
		if iface.IsVirtual {
			continue
		}
		ips = append(ips, iface.Addresses...)
		if sysIface, err := net.InterfaceByName(iface.Name); err == nil {
			ifaces = append(ifaces, *sysIface)
		}
	}

	if len(ips) == 0 {
		return fmt.Errorf("no available LAN addresses")
	}

	server, err := zeroconf.RegisterProxy(
		info.InstanceName,
		info.ServiceType,
		info.Domain,
		info.Port,
		info.InstanceName,
		ips,
		info.records(),
		ifaces,
	)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	a.server = server
	a.info = &info
	a.running = true

	a.logger.Info("mDNS advertiser started",
		"instance", info.InstanceName,
		"service", info.ServiceType,
		"port", info.Port,
		"ips", ips,
	)

	return nil
}

// Stop 停止广播
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	a.running = false
	a.info = nil

	a.logger.Info("mDNS advertiser stopped")
}

// IsRunning 是否正在广播
func (a *Advertiser) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Info 当前广播的服务信息，未运行时返回 nil
func (a *Advertiser) Info() *ServiceInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.info == nil {
		return nil
	}
	infoCopy := *a.info
	return &infoCopy
}
