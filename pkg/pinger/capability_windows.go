//go:build windows

package pinger

import (
	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// windowsCapability Windows平台能力实现
type windowsCapability struct{}

// hasPrivilegedAccess 检查Windows管理员权限
func (w *windowsCapability) hasPrivilegedAccess() bool {
	return checkWindowsAdmin()
}

// newPrivilegedProber 创建特权模式探测器（使用raw socket）
func (w *windowsCapability) newPrivilegedProber(target string, config *Config) (core.Prober, error) {
	return newPrivilegedProber(target, config)
}

// newUnprivilegedProber 创建Windows API探测器
func (w *windowsCapability) newUnprivilegedProber(target string, config *Config) (core.Prober, error) {
	return newWindowsProber(target, config)
}

// getPlatformCapability 获取Windows平台的能力实现
func getPlatformCapability() platformCapability {
	return &windowsCapability{}
}
