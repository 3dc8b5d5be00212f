//go:build linux

// Package pinger - Linux非特权模式实现
// 使用SOCK_DGRAM类型的ICMP套接字，仅适用于Linux系统
package pinger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// dgramProber Linux非特权模式的探测器
type dgramProber struct {
	target   string
	dst      net.IP
	sock     int // IPv4 DGRAM socket
	sockaddr *syscall.SockaddrInet4
	seq      int
	reply    []byte
}

// newLinuxDgramProber 创建Linux非特权模式的探测器实例
func newLinuxDgramProber(target string, config *Config) (core.Prober, error) {
	dst, err := net.ResolveIPAddr("ip4", target)
	if err != nil {
		return nil, fmt.Errorf("解析 '%s' 失败: %w", target, err)
	}

	// 创建DGRAM ICMP socket
	sock, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_DGRAM, syscall.IPPROTO_ICMP)
	if err != nil {
		return nil, fmt.Errorf("创建DGRAM ICMP套接字失败: %w", err)
	}

	// 构建sockaddr_in结构
	sockaddr := &syscall.SockaddrInet4{}
	copy(sockaddr.Addr[:], dst.IP.To4())

	return &dgramProber{
		target:   target,
		dst:      dst.IP,
		sock:     sock,
		sockaddr: sockaddr,
		reply:    make([]byte, 1500),
	}, nil
}

// Target 实现core.Prober接口
func (p *dgramProber) Target() string {
	return p.target
}

// Probe 发送单个ping包并等待回复
func (p *dgramProber) Probe(ctx context.Context) (time.Duration, error) {
	deadline, err := probeDeadline(ctx)
	if err != nil {
		return 0, err
	}

	p.seq = (p.seq + 1) & 0xffff
	// ID由内核按套接字改写，这里填0
	data, err := marshalEcho(4, 0, p.seq)
	if err != nil {
		return 0, err
	}

	// 记录发送时间
	startTime := time.Now()

	if err := syscall.Sendto(p.sock, data, 0, p.sockaddr); err != nil {
		return 0, err
	}

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}

		// 设置接收超时
		tv := syscall.NsecToTimeval(remaining.Nanoseconds())
		if err := syscall.SetsockoptTimeval(p.sock, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
			return 0, err
		}

		n, from, err := syscall.Recvfrom(p.sock, p.reply, 0)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) {
				continue
			}
			return 0, err
		}

		// 检查来源地址
		if fromAddr, ok := from.(*syscall.SockaddrInet4); ok {
			fromIP := net.IPv4(fromAddr.Addr[0], fromAddr.Addr[1], fromAddr.Addr[2], fromAddr.Addr[3])
			if !fromIP.Equal(p.dst) {
				continue
			}
		}

		if matchEchoReply(4, p.reply[:n], -1, p.seq) {
			return time.Since(startTime), nil
		}
	}
}

// Close 关闭socket
func (p *dgramProber) Close() error {
	if p.sock > 0 {
		err := syscall.Close(p.sock)
		p.sock = -1
		return err
	}
	return nil
}
