package discovery

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
)

// 虚拟网卡名称前缀，广播时排除
var virtualInterfacePrefixes = []string{
	"vmnet",   // VMware
	"vboxnet", // VirtualBox
	"veth",    // 容器
	"docker",
	"br-",
	"virbr",
	"tun",
	"tap",
	"utun",
	"awdl",
	"llw",
}

// LANInterface 可用于广播的网络接口
type LANInterface struct {
	Name      string
	Addresses []string
	IsVirtual bool
}

// LANInterfaces 列出已启用的非回环接口及其私有 IPv4 地址，物理网卡在前
func LANInterfaces() ([]LANInterface, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get interfaces: %w", err)
	}

	var result []LANInterface
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		var ipv4Addrs []string
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil || !isValidLANAddress(ip4) {
				continue
			}
			ipv4Addrs = append(ipv4Addrs, ip4.String())
		}

		if len(ipv4Addrs) > 0 {
			result = append(result, LANInterface{
				Name:      iface.Name,
				Addresses: ipv4Addrs,
				IsVirtual: isVirtualInterface(iface.Name),
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].IsVirtual != result[j].IsVirtual {
			return !result[i].IsVirtual
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// isValidLANAddress 私有地址段且非链路本地
func isValidLANAddress(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil || ip4.IsLoopback() {
		return false
	}
	if ip4[0] == 169 && ip4[1] == 254 {
		return false
	}
	return ip4.IsPrivate()
}

func isVirtualInterface(name string) bool {
	lowerName := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lowerName, prefix) {
			return true
		}
	}
	return false
}

// ParsePort 从监听地址（":19970" 或 "0.0.0.0:19970"）中解析端口
func ParsePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in %q", addr)
	}
	return port, nil
}
