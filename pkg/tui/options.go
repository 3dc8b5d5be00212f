// Package tui 选项模式支持
package tui

import (
	"time"
)

// Option TUI配置选项函数类型
type Option func(*Config)

// WithRefreshInterval 设置UI刷新间隔
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = interval
	}
}

// WithChartSize 设置图表最小尺寸
func WithChartSize(width, height int) Option {
	return func(c *Config) {
		c.MinChartWidth = width
		c.MinChartHeight = height
	}
}

// WithMaxLogLines 设置日志面板保留的行数
func WithMaxLogLines(n int) Option {
	return func(c *Config) {
		c.MaxLogLines = n
	}
}

// WithDiagnosticsHeight 设置诊断面板展开后的高度
func WithDiagnosticsHeight(rows int) Option {
	return func(c *Config) {
		c.DiagnosticsHeight = rows
	}
}

// NewConfigWithOptions 使用选项模式创建TUI配置
func NewConfigWithOptions(opts ...Option) *Config {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return config
}
