package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Kevin-Rudy/pingtrack/pkg/config"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
	"github.com/Kevin-Rudy/pingtrack/pkg/tui"
)

// buildConfig 默认值 → 配置文件 → .env与环境变量 → 命令行参数
func buildConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()

	if path := c.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.LoadDotenv(c.StringSlice("env-file")...); err != nil {
		cfg.Warnings = append(cfg.Warnings, fmt.Errorf("env file: %w", err))
	}
	cfg.LoadEnv()

	applyFlags(c, cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags 用显式设置的命令行参数覆盖配置
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.NArg() > 0 {
		cfg.SetDestinations(c.Args().Slice())
	}
	// 作用于所有未单独指定间隔的目标，包括默认目标
	if c.IsSet("interval") {
		cfg.Interval = c.Duration("interval")
	}

	if c.Bool("6") {
		cfg.IPVersion = 6
	} else if c.IsSet("4") {
		cfg.IPVersion = 4
	}
	if c.IsSet("mode") {
		cfg.Mode = strings.ToLower(c.String("mode"))
	}
	if c.IsSet("port") {
		cfg.TCPPort = c.Int("port")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}

	if c.IsSet("bars") {
		cfg.Graph.Bars = c.Int("bars")
	}
	if c.IsSet("bar-interval") {
		cfg.Graph.Interval = c.Duration("bar-interval")
	}
	setMillis(c, cfg, "min", &cfg.Graph.Min)
	setMillis(c, cfg, "max", &cfg.Graph.Max)

	if c.IsSet("autosave") {
		cfg.AutoSave = c.Duration("autosave")
	}
	if c.IsSet("retention") {
		cfg.Retention = c.Duration("retention")
	}
	if c.IsSet("log-dir") {
		cfg.LogDir = c.String("log-dir")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Logging.File = c.String("log-file")
	}
	if c.IsSet("http") {
		cfg.HTTP.Address = c.String("http")
	}
	if c.Bool("headless") {
		cfg.Headless = true
	}
}

func setMillis(c *cli.Context, cfg *config.Config, name string, dst *uint16) {
	if !c.IsSet(name) {
		return
	}
	v := c.Uint(name)
	if v > math.MaxUint16 {
		cfg.Warnings = append(cfg.Warnings, fmt.Errorf("%w: --%s %d is out of range, using %d",
			config.ErrInvalidSetting, name, v, *dst))
		return
	}
	*dst = uint16(v)
}

// monitorConfig 转换为监控器配置
func monitorConfig(cfg *config.Config) *monitor.Config {
	mc := monitor.DefaultConfig()
	mc.Tick = cfg.Tick
	mc.GraphRefresh = cfg.Graph.Refresh
	mc.GraphInterval = cfg.Graph.Interval
	mc.Bars = cfg.Graph.Bars
	mc.Min = cfg.Graph.Min
	mc.Max = cfg.Graph.Max
	mc.AutoSave = cfg.AutoSave
	mc.Debounce = cfg.Debounce
	mc.Retention = cfg.Retention
	return mc
}

// tuiConfig 从命令行参数构建界面配置
func tuiConfig(c *cli.Context) (*tui.Config, error) {
	tc := tui.NewConfigWithOptions(tui.WithRefreshInterval(c.Duration("refresh-rate")))
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("tui配置错误: %v", err)
	}
	return tc, nil
}

// destinationNames 目标地址，保持配置顺序
func destinationNames(cfg *config.Config) []string {
	names := make([]string, len(cfg.Destinations))
	for i, d := range cfg.Destinations {
		names[i] = d.Address
	}
	return names
}
