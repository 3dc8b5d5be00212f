// Package pinger - TCP连接探测
// 以建立TCP连接的耗时作为往返时间，不需要任何特权
package pinger

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// tcpProber TCP连接探测器
type tcpProber struct {
	target  string
	network string
	address string
	dialer  net.Dialer
}

// newTCPProber 创建TCP探测器
func newTCPProber(target string, config *Config) (core.Prober, error) {
	network := "tcp4"
	if config.IPVersion == 6 {
		network = "tcp6"
	}
	return &tcpProber{
		target:  target,
		network: network,
		address: net.JoinHostPort(target, strconv.Itoa(config.TCPPort)),
	}, nil
}

// Target 实现core.Prober接口
func (p *tcpProber) Target() string {
	return p.target
}

// Probe 建立一次连接并立即关闭
func (p *tcpProber) Probe(ctx context.Context) (time.Duration, error) {
	if _, err := probeDeadline(ctx); err != nil {
		return 0, err
	}

	start := time.Now()
	conn, err := p.dialer.DialContext(ctx, p.network, p.address)
	if err != nil {
		return 0, err
	}
	rtt := time.Since(start)
	conn.Close()

	return rtt, nil
}

// Close TCP探测器不持有长期资源
func (p *tcpProber) Close() error {
	return nil
}
