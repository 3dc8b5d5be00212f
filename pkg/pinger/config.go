// Package pinger 配置定义
package pinger

import (
	"errors"
	"fmt"
	"net"
	"time"

	"gopkg.in/op/go-logging.v1"
)

// 探测方式
const (
	ModeICMP = "icmp" // ICMP回显，按权限自动选择实现
	ModeTCP  = "tcp"  // TCP连接耗时，不需要任何权限
)

// Target 单个监控目标
type Target struct {
	Address  string        // 目标地址（IP或域名）
	Interval time.Duration // 两次探测之间的休眠时间，0表示使用Config.Interval
}

// Config pinger组件的配置结构
type Config struct {
	IPVersion  int           // IP版本，4或6
	Interval   time.Duration // 默认探测间隔
	Timeout    time.Duration // 单次探测超时时间
	BufferSize int           // 样本通道缓冲区大小
	Mode       string        // 探测方式：icmp 或 tcp
	TCPPort    int           // tcp模式下连接的端口

	Log *logging.Logger // 为nil时使用"pinger"模块日志
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		IPVersion:  4,               // 默认IPv4
		Interval:   time.Second,     // 默认1秒间隔
		Timeout:    2 * time.Second, // 默认2秒超时
		BufferSize: 100,             // 默认100缓冲区大小
		Mode:       ModeICMP,
		TCPPort:    443,
	}
}

// GetIPProtocol 获取IP协议字符串，用于网络操作
func (c *Config) GetIPProtocol() string {
	if c.IPVersion == 6 {
		return "ip6"
	}
	return "ip4"
}

func (c *Config) logger() *logging.Logger {
	if c.Log != nil {
		return c.Log
	}
	return logging.MustGetLogger("pinger")
}

// intervalFor 返回目标的实际探测间隔
func (c *Config) intervalFor(target Target) time.Duration {
	if target.Interval > 0 {
		return target.Interval
	}
	return c.Interval
}

// ValidateTargets 验证目标地址是否符合当前IP版本配置
func (c *Config) ValidateTargets(targets []Target) error {
	if len(targets) == 0 {
		return ErrNoTargets
	}

	protocol := c.GetIPProtocol()

	for _, target := range targets {
		if target.Address == "" {
			return errors.New("目标地址不能为空")
		}

		if target.Interval < 0 {
			return fmt.Errorf("目标 '%s' 的探测间隔不能为负数", target.Address)
		}

		if c.Mode == ModeTCP {
			// tcp模式下域名在拨号时解析
			continue
		}

		_, err := net.ResolveIPAddr(protocol, target.Address)
		if err != nil {
			return fmt.Errorf("无法将 '%s' 解析为IPv%d地址: %w", target.Address, c.IPVersion, err)
		}
	}
	return nil
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.IPVersion != 4 && c.IPVersion != 6 {
		return errors.New("IP版本必须是4或6")
	}

	if c.Interval <= 0 {
		return errors.New("ping间隔必须大于0")
	}

	if c.Interval < 10*time.Millisecond {
		return errors.New("ping间隔不能小于10ms")
	}

	if c.Timeout <= 0 {
		return errors.New("超时时间必须大于0")
	}

	if c.Timeout < 100*time.Millisecond {
		return errors.New("超时时间不能小于100ms")
	}

	if c.BufferSize <= 0 {
		return errors.New("缓冲区大小必须大于0")
	}

	switch c.Mode {
	case ModeICMP:
	case ModeTCP:
		if c.TCPPort <= 0 || c.TCPPort > 65535 {
			return fmt.Errorf("无效的TCP端口: %d", c.TCPPort)
		}
	default:
		return fmt.Errorf("未知的探测方式: '%s'", c.Mode)
	}

	return nil
}
