// Package pinger 选项模式支持
package pinger

import (
	"time"

	"gopkg.in/op/go-logging.v1"
)

// Option 配置选项函数类型
type Option func(*Config)

// WithIPVersion 设置IP版本
func WithIPVersion(version int) Option {
	return func(c *Config) {
		c.IPVersion = version
	}
}

// WithInterval 设置默认探测间隔
func WithInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.Interval = interval
	}
}

// WithTimeout 设置超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithBufferSize 设置缓冲区大小
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithTCP 使用TCP连接耗时代替ICMP
func WithTCP(port int) Option {
	return func(c *Config) {
		c.Mode = ModeTCP
		c.TCPPort = port
	}
}

// WithLogger 设置日志记录器
func WithLogger(log *logging.Logger) Option {
	return func(c *Config) {
		c.Log = log
	}
}

// NewPingerWithOptions 使用选项模式创建Pinger
func NewPingerWithOptions(targets []Target, opts ...Option) (*Pinger, error) {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return NewPinger(targets, config)
}
