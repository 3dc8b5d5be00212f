// Package config 组装运行配置
// 层次：默认值 → TOML文件 → .env与环境变量 → 命令行参数，最后统一规范化
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/graph"
	"github.com/Kevin-Rudy/pingtrack/pkg/pinger"
)

var (
	// ErrNoDestinations 配置中没有任何目标
	ErrNoDestinations = errors.New("config: no destinations")

	// ErrInvalidSetting 某个设置无法使用，已回退到默认值
	ErrInvalidSetting = errors.New("config: invalid setting")
)

// 默认值
const (
	DefaultDestinationInterval = 1010 * time.Millisecond
	DefaultTick                = 250 * time.Millisecond
	DefaultGraphRefresh        = 250 * time.Millisecond
	DefaultAutoSave            = 5 * time.Minute
	DefaultDebounce            = time.Second
	DefaultLogLevel            = "NOTICE"

	fallbackInterval = time.Second
	minInterval      = 10 * time.Millisecond
)

// DefaultDestinations 未配置任何目标时使用的公共DNS
var DefaultDestinations = []string{"1.1.1.2", "8.8.8.8", "208.67.222.222", "9.9.9.9"}

// Destination 一个监控目标
type Destination struct {
	Address  string
	Interval time.Duration
}

// GraphConfig 柱状图参数
type GraphConfig struct {
	Bars     int
	Interval time.Duration // 每根柱子的时间宽度
	Refresh  time.Duration // 重算的最小间隔
	Min      uint16
	Max      uint16
}

// LoggingConfig 日志参数
type LoggingConfig struct {
	File    string // 为空时写到标准输出（TUI模式下只写日志面板）
	Level   string
	Disable bool
}

// HTTPConfig 状态接口参数，Address为空时不启动
type HTTPConfig struct {
	Address string
}

// DiscordConfig 断线通知参数，Token为空时不启用
type DiscordConfig struct {
	Token     string
	ChannelID string
}

// Config 完整的运行配置
type Config struct {
	Destinations []Destination
	Interval     time.Duration // 目标未指定间隔时使用

	Mode       string
	IPVersion  int
	TCPPort    int
	Timeout    time.Duration
	BufferSize int

	Tick      time.Duration
	AutoSave  time.Duration
	Debounce  time.Duration
	Retention time.Duration // 0表示保留全部样本

	Graph   GraphConfig
	LogDir  string
	Logging LoggingConfig
	HTTP    HTTPConfig
	Discord DiscordConfig

	Headless bool

	// Warnings 加载过程中遇到并已回退的问题，启动时报告一次
	Warnings []error
}

// Default 返回默认配置
func Default() *Config {
	pc := pinger.DefaultConfig()
	return &Config{
		Interval:   DefaultDestinationInterval,
		Mode:       pc.Mode,
		IPVersion:  pc.IPVersion,
		TCPPort:    pc.TCPPort,
		Timeout:    pc.Timeout,
		BufferSize: pc.BufferSize,
		Tick:       DefaultTick,
		AutoSave:   DefaultAutoSave,
		Debounce:   DefaultDebounce,
		Graph: GraphConfig{
			Bars:     graph.DefaultBars,
			Interval: graph.DefaultInterval,
			Refresh:  DefaultGraphRefresh,
			Min:      graph.DefaultMin,
			Max:      graph.DefaultMax,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

func (c *Config) warnf(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidSetting}, args...)...))
}

// SetDestinations 用地址列表替换目标，间隔使用默认值
func (c *Config) SetDestinations(addresses []string) {
	c.Destinations = c.Destinations[:0]
	for _, a := range addresses {
		if a = strings.TrimSpace(a); a != "" {
			c.Destinations = append(c.Destinations, Destination{Address: a})
		}
	}
}

// Normalize 把所有层次合并后的配置修正为可用的值
// 每个修正都记录到Warnings
func (c *Config) Normalize() {
	defaults := Default()

	// 解析目标依赖模式与IP版本，先修正这两项
	if c.Mode != pinger.ModeICMP && c.Mode != pinger.ModeTCP {
		c.warnf("unknown mode '%s', using '%s'", c.Mode, defaults.Mode)
		c.Mode = defaults.Mode
	}
	if c.IPVersion != 4 && c.IPVersion != 6 {
		c.warnf("ip version %d, using %d", c.IPVersion, defaults.IPVersion)
		c.IPVersion = defaults.IPVersion
	}
	if c.Interval < minInterval {
		c.warnf("default interval %v, using %v", c.Interval, DefaultDestinationInterval)
		c.Interval = DefaultDestinationInterval
	}

	valid := c.Destinations[:0]
	for _, d := range c.Destinations {
		if !ValidHost(d.Address) {
			c.warnf("destination '%s' is not a valid address, skipped", d.Address)
			continue
		}
		if err := c.resolvable(d.Address); err != nil {
			c.warnf("destination '%s' cannot be resolved for IPv%d, skipped: %v", d.Address, c.IPVersion, err)
			continue
		}
		switch {
		case d.Interval < 0:
			c.warnf("interval for '%s' is negative, using %v", d.Address, fallbackInterval)
			d.Interval = fallbackInterval
		case d.Interval == 0:
			d.Interval = c.Interval
		case d.Interval < minInterval:
			c.warnf("interval %v for '%s' below %v, using %v", d.Interval, d.Address, minInterval, minInterval)
			d.Interval = minInterval
		}
		valid = append(valid, d)
	}
	c.Destinations = valid

	if len(c.Destinations) == 0 {
		for _, a := range DefaultDestinations {
			c.Destinations = append(c.Destinations, Destination{Address: a, Interval: c.Interval})
		}
	}

	if c.TCPPort <= 0 || c.TCPPort > 65535 {
		c.warnf("tcp port %d, using %d", c.TCPPort, defaults.TCPPort)
		c.TCPPort = defaults.TCPPort
	}
	if c.Timeout < 100*time.Millisecond {
		c.warnf("timeout %v, using %v", c.Timeout, defaults.Timeout)
		c.Timeout = defaults.Timeout
	}
	if c.BufferSize <= 0 {
		c.warnf("buffer size %d, using %d", c.BufferSize, defaults.BufferSize)
		c.BufferSize = defaults.BufferSize
	}

	c.Tick = positive(c, "tick", c.Tick, defaults.Tick)
	c.AutoSave = positive(c, "autosave", c.AutoSave, defaults.AutoSave)
	if c.Debounce < 0 {
		c.warnf("debounce %v, using %v", c.Debounce, defaults.Debounce)
		c.Debounce = defaults.Debounce
	}
	if c.Retention < 0 {
		c.warnf("retention %v, keeping all samples", c.Retention)
		c.Retention = 0
	}

	if c.Graph.Bars <= 0 {
		c.warnf("bar count %d, using %d", c.Graph.Bars, graph.DefaultBars)
		c.Graph.Bars = graph.DefaultBars
	}
	c.Graph.Interval = positive(c, "graph interval", c.Graph.Interval, fallbackInterval)
	c.Graph.Refresh = positive(c, "graph refresh", c.Graph.Refresh, defaults.Graph.Refresh)
	if c.Graph.Max < c.Graph.Min {
		max := c.Graph.Min + 10
		if max < c.Graph.Min {
			max = ^uint16(0)
		}
		c.warnf("display max %d below min %d, using %d", c.Graph.Max, c.Graph.Min, max)
		c.Graph.Max = max
	}

	switch strings.ToUpper(c.Logging.Level) {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
		c.Logging.Level = strings.ToUpper(c.Logging.Level)
	default:
		c.warnf("log level '%s', using %s", c.Logging.Level, DefaultLogLevel)
		c.Logging.Level = DefaultLogLevel
	}

	if c.Discord.Token != "" && c.Discord.ChannelID == "" {
		c.warnf("discord token set without channel, notifications disabled")
		c.Discord.Token = ""
	}
}

// resolveIPAddr 测试中替换
var resolveIPAddr = net.ResolveIPAddr

// resolvable 与pinger启动时的检查一致：icmp模式下地址必须能解析为所选IP版本
func (c *Config) resolvable(address string) error {
	if c.Mode == pinger.ModeTCP {
		return nil
	}
	network := "ip4"
	if c.IPVersion == 6 {
		network = "ip6"
	}
	_, err := resolveIPAddr(network, address)
	return err
}

func positive(c *Config, name string, v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	c.warnf("%s %v, using %v", name, v, fallback)
	return fallback
}

// Validate 检查规范化之后仍然无法运行的情况
func (c *Config) Validate() error {
	if len(c.Destinations) == 0 {
		return ErrNoDestinations
	}
	return c.Pinger().Validate()
}

// Targets 转换为pinger的目标列表
func (c *Config) Targets() []pinger.Target {
	targets := make([]pinger.Target, len(c.Destinations))
	for i, d := range c.Destinations {
		targets[i] = pinger.Target{Address: d.Address, Interval: d.Interval}
	}
	return targets
}

// Pinger 转换为pinger的配置
func (c *Config) Pinger() *pinger.Config {
	pc := pinger.DefaultConfig()
	pc.Mode = c.Mode
	pc.IPVersion = c.IPVersion
	pc.TCPPort = c.TCPPort
	pc.Timeout = c.Timeout
	pc.BufferSize = c.BufferSize
	if len(c.Destinations) > 0 && c.Destinations[0].Interval > 0 {
		pc.Interval = c.Destinations[0].Interval
	}
	return pc
}

// ValidHost IP字面量或语法正确的主机名
func ValidHost(s string) bool {
	if s == "" {
		return false
	}
	if net.ParseIP(s) != nil {
		return true
	}
	if len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(strings.TrimSuffix(s, "."), ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			default:
				return false
			}
		}
	}
	return true
}
