//go:build darwin

package pinger

import (
	"os"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// darwinCapability macOS平台能力实现
type darwinCapability struct{}

// hasPrivilegedAccess 检查macOS root权限
func (d *darwinCapability) hasPrivilegedAccess() bool {
	return os.Geteuid() == 0
}

// newPrivilegedProber 创建特权模式探测器（使用raw socket）
func (d *darwinCapability) newPrivilegedProber(target string, config *Config) (core.Prober, error) {
	return newPrivilegedProber(target, config)
}

// newUnprivilegedProber macOS允许普通用户使用SOCK_DGRAM的ICMP套接字
func (d *darwinCapability) newUnprivilegedProber(target string, config *Config) (core.Prober, error) {
	return newUDPProber(target, config)
}

// getPlatformCapability 获取macOS平台的能力实现
func getPlatformCapability() platformCapability {
	return &darwinCapability{}
}
