// Package tui 配置定义
package tui

import (
	"errors"
	"time"
)

// Config TUI组件的配置结构
type Config struct {
	RefreshInterval   time.Duration // UI刷新间隔
	MinChartWidth     int           // 最小图表宽度
	MinChartHeight    int           // 最小图表高度
	MaxLogLines       int           // 日志面板保留的行数
	DiagnosticsHeight int           // 诊断面板展开后的高度
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:   200 * time.Millisecond, // 默认200ms刷新
		MinChartWidth:     20,
		MinChartHeight:    5,
		MaxLogLines:       200,
		DiagnosticsHeight: 8,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("UI刷新间隔必须大于0")
	}

	if c.RefreshInterval < 10*time.Millisecond {
		return errors.New("UI刷新间隔不能小于10ms")
	}

	if c.MinChartWidth <= 0 {
		return errors.New("最小图表宽度必须大于0")
	}

	if c.MinChartHeight <= 0 {
		return errors.New("最小图表高度必须大于0")
	}

	if c.MaxLogLines <= 0 {
		return errors.New("日志行数必须大于0")
	}

	if c.DiagnosticsHeight < 3 {
		return errors.New("诊断面板高度不能小于3")
	}

	return nil
}
