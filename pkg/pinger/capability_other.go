//go:build !linux && !darwin && !windows

package pinger

import (
	"os"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// genericCapability 其他Unix平台，只支持root下的raw socket
type genericCapability struct{}

func (g *genericCapability) hasPrivilegedAccess() bool {
	return os.Geteuid() == 0
}

func (g *genericCapability) newPrivilegedProber(target string, config *Config) (core.Prober, error) {
	return newPrivilegedProber(target, config)
}

func (g *genericCapability) newUnprivilegedProber(target string, config *Config) (core.Prober, error) {
	return newUDPProber(target, config)
}

func getPlatformCapability() platformCapability {
	return &genericCapability{}
}
