// Package pinger - 基于x/net的非特权ICMP实现
// 通过"udp4"/"udp6"网络打开SOCK_DGRAM类型的ICMP套接字（Linux与macOS支持）
package pinger

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"golang.org/x/net/icmp"
)

// udpProber 使用icmp.PacketConn的探测器
type udpProber struct {
	target    string
	ipVersion int
	dst       *net.UDPAddr
	conn      *icmp.PacketConn
	seq       int
	reply     []byte
}

// newUDPProber 创建UDP ICMP探测器
func newUDPProber(target string, config *Config) (core.Prober, error) {
	dst, err := net.ResolveIPAddr(config.GetIPProtocol(), target)
	if err != nil {
		return nil, fmt.Errorf("解析 '%s' 失败: %w", target, err)
	}

	network, address := "udp4", "0.0.0.0"
	if config.IPVersion == 6 {
		network, address = "udp6", "::"
	}

	conn, err := icmp.ListenPacket(network, address)
	if err != nil {
		return nil, fmt.Errorf("创建ICMP套接字失败: %w", err)
	}

	return &udpProber{
		target:    target,
		ipVersion: config.IPVersion,
		dst:       &net.UDPAddr{IP: dst.IP, Zone: dst.Zone},
		conn:      conn,
		reply:     make([]byte, 1500),
	}, nil
}

// Target 实现core.Prober接口
func (p *udpProber) Target() string {
	return p.target
}

// Probe 发送单个ping包并等待回复
func (p *udpProber) Probe(ctx context.Context) (time.Duration, error) {
	deadline, err := probeDeadline(ctx)
	if err != nil {
		return 0, err
	}

	p.seq = (p.seq + 1) & 0xffff
	data, err := marshalEcho(p.ipVersion, 0, p.seq)
	if err != nil {
		return 0, err
	}

	if err := p.conn.SetDeadline(deadline); err != nil {
		return 0, err
	}

	startTime := time.Now()

	if _, err := p.conn.WriteTo(data, p.dst); err != nil {
		return 0, err
	}

	for {
		n, from, err := p.conn.ReadFrom(p.reply)
		if err != nil {
			return 0, err
		}

		if udpFrom, ok := from.(*net.UDPAddr); ok && !udpFrom.IP.Equal(p.dst.IP) {
			continue
		}

		// ID由内核改写，只校验序号
		if matchEchoReply(p.ipVersion, p.reply[:n], -1, p.seq) {
			return time.Since(startTime), nil
		}
	}
}

// Close 关闭套接字
func (p *udpProber) Close() error {
	return p.conn.Close()
}
