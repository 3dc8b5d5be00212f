// Package pinger - 特权模式实现
// 使用原始套接字，需要管理员/root权限，但支持所有操作系统
package pinger

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// privilegedProber 特权模式的探测器，每个目标一个已连接的原始套接字
type privilegedProber struct {
	target    string
	ipVersion int
	conn      net.Conn
	id        int
	seq       int
	reply     []byte
}

// newPrivilegedProber 创建特权模式的探测器实例
func newPrivilegedProber(target string, config *Config) (core.Prober, error) {
	dst, err := net.ResolveIPAddr(config.GetIPProtocol(), target)
	if err != nil {
		return nil, fmt.Errorf("解析 '%s' 失败: %w", target, err)
	}

	// 创建原始套接字
	network := "ip4:icmp"
	if config.IPVersion == 6 {
		network = "ip6:ipv6-icmp"
	}
	conn, err := net.Dial(network, dst.String())
	if err != nil {
		return nil, fmt.Errorf("创建原始套接字失败: %w", err)
	}

	return &privilegedProber{
		target:    target,
		ipVersion: config.IPVersion,
		conn:      conn,
		id:        nextEchoID(),
		reply:     make([]byte, 1500),
	}, nil
}

// Target 实现core.Prober接口
func (p *privilegedProber) Target() string {
	return p.target
}

// Probe 发送单个ping包并等待匹配的回复
func (p *privilegedProber) Probe(ctx context.Context) (time.Duration, error) {
	deadline, err := probeDeadline(ctx)
	if err != nil {
		return 0, err
	}

	p.seq = (p.seq + 1) & 0xffff
	data, err := marshalEcho(p.ipVersion, p.id, p.seq)
	if err != nil {
		return 0, err
	}

	if err := p.conn.SetDeadline(deadline); err != nil {
		return 0, err
	}

	// 记录发送时间
	startTime := time.Now()

	if _, err := p.conn.Write(data); err != nil {
		return 0, err
	}

	for {
		n, err := p.conn.Read(p.reply)
		if err != nil {
			// 超时或其他错误
			return 0, err
		}

		// 同一套接字上可能收到其他进程或旧序号的回复，跳过
		if matchEchoReply(p.ipVersion, p.reply[:n], p.id, p.seq) {
			return time.Since(startTime), nil
		}

		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
}

// Close 关闭原始套接字
func (p *privilegedProber) Close() error {
	return p.conn.Close()
}
