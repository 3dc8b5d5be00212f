package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// fileDestination TOML中的[[destination]]表
type fileDestination struct {
	Address  string `toml:"address"`
	Interval string `toml:"interval"`
}

// fileConfig TOML文件的结构，时长都是字符串以便单独回退
type fileConfig struct {
	Destination []fileDestination `toml:"destination"`
	Interval    string            `toml:"interval"`

	Mode       string `toml:"mode"`
	IPVersion  *int   `toml:"ip_version"`
	TCPPort    *int   `toml:"tcp_port"`
	Timeout    string `toml:"timeout"`
	BufferSize *int   `toml:"buffer_size"`

	Tick      string `toml:"tick"`
	AutoSave  string `toml:"autosave"`
	Debounce  string `toml:"debounce"`
	Retention string `toml:"retention"`
	LogDir    string `toml:"log_dir"`

	Graph struct {
		Bars     *int   `toml:"bars"`
		Interval string `toml:"interval"`
		Refresh  string `toml:"refresh"`
		Min      *int   `toml:"min"`
		Max      *int   `toml:"max"`
	} `toml:"graph"`

	Logging struct {
		File    string `toml:"file"`
		Level   string `toml:"level"`
		Disable bool   `toml:"disable"`
	} `toml:"logging"`

	HTTP struct {
		Address string `toml:"address"`
	} `toml:"http"`

	Discord struct {
		Token     string `toml:"token"`
		ChannelID string `toml:"channel_id"`
	} `toml:"discord"`
}

// LoadFile 读取TOML配置文件并覆盖当前值
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.Load(b)
}

// Load 解析TOML内容并覆盖当前值
// 语法错误返回error；单个值无法使用时记录警告并保留原值
func (c *Config) Load(b []byte) error {
	var fc fileConfig
	md, err := toml.Decode(string(b), &fc)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		c.warnf("undecoded keys in config file: %v", undecoded)
	}

	if len(fc.Destination) > 0 {
		c.Destinations = c.Destinations[:0]
		for _, d := range fc.Destination {
			dest := Destination{Address: d.Address}
			if d.Interval != "" {
				iv, err := time.ParseDuration(d.Interval)
				if err != nil || iv <= 0 {
					c.warnf("interval '%s' for '%s', using %v", d.Interval, d.Address, fallbackInterval)
					iv = fallbackInterval
				}
				dest.Interval = iv
			}
			c.Destinations = append(c.Destinations, dest)
		}
	}

	c.setDuration("interval", &c.Interval, fc.Interval)
	if fc.Mode != "" {
		c.Mode = fc.Mode
	}
	setInt(&c.IPVersion, fc.IPVersion)
	setInt(&c.TCPPort, fc.TCPPort)
	setInt(&c.BufferSize, fc.BufferSize)
	c.setDuration("timeout", &c.Timeout, fc.Timeout)
	c.setDuration("tick", &c.Tick, fc.Tick)
	c.setDuration("autosave", &c.AutoSave, fc.AutoSave)
	c.setDuration("debounce", &c.Debounce, fc.Debounce)
	c.setDuration("retention", &c.Retention, fc.Retention)
	if fc.LogDir != "" {
		c.LogDir = fc.LogDir
	}

	setInt(&c.Graph.Bars, fc.Graph.Bars)
	c.setDuration("graph interval", &c.Graph.Interval, fc.Graph.Interval)
	c.setDuration("graph refresh", &c.Graph.Refresh, fc.Graph.Refresh)
	c.setUint16("graph min", &c.Graph.Min, fc.Graph.Min)
	c.setUint16("graph max", &c.Graph.Max, fc.Graph.Max)

	if fc.Logging.File != "" {
		c.Logging.File = fc.Logging.File
	}
	if fc.Logging.Level != "" {
		c.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Disable {
		c.Logging.Disable = true
	}
	if fc.HTTP.Address != "" {
		c.HTTP.Address = fc.HTTP.Address
	}
	if fc.Discord.Token != "" {
		c.Discord.Token = fc.Discord.Token
	}
	if fc.Discord.ChannelID != "" {
		c.Discord.ChannelID = fc.Discord.ChannelID
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) setDuration(name string, dst *time.Duration, text string) {
	if text == "" {
		return
	}
	d, err := time.ParseDuration(text)
	if err != nil {
		c.warnf("%s '%s' is not a duration, using %v", name, text, *dst)
		return
	}
	*dst = d
}

func (c *Config) setUint16(name string, dst *uint16, v *int) {
	if v == nil {
		return
	}
	if *v < 0 || *v > int(^uint16(0)) {
		c.warnf("%s %d out of range, using %d", name, *v, *dst)
		return
	}
	*dst = uint16(*v)
}
