package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// 环境变量名
const (
	EnvDestinations = "PINGTRACK_DESTINATIONS"
	EnvMode         = "PINGTRACK_MODE"
	EnvLogDir       = "PINGTRACK_LOG_DIR"
	EnvLogLevel     = "PINGTRACK_LOG_LEVEL"
	EnvLogFile      = "PINGTRACK_LOG_FILE"
	EnvRetention    = "PINGTRACK_RETENTION"
	EnvTimeout      = "PINGTRACK_TIMEOUT"
	EnvBars         = "PINGTRACK_BARS"
	EnvHTTPAddress  = "PINGTRACK_HTTP_ADDR"
	EnvDiscordToken = "DISCORD_BOT_TOKEN"
	EnvDiscordChan  = "DISCORD_CHANNEL_ID"
)

// LoadDotenv 读取.env文件到进程环境，已存在的环境变量不会被覆盖
// 文件不存在不是错误
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// LoadEnv 用环境变量覆盖当前值
func (c *Config) LoadEnv() {
	if val := os.Getenv(EnvDestinations); val != "" {
		c.SetDestinations(strings.Split(val, ","))
	}
	if val := os.Getenv(EnvMode); val != "" {
		c.Mode = strings.ToLower(val)
	}
	if val := os.Getenv(EnvLogDir); val != "" {
		c.LogDir = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv(EnvLogFile); val != "" {
		c.Logging.File = val
	}
	c.setDuration(EnvRetention, &c.Retention, os.Getenv(EnvRetention))
	c.setDuration(EnvTimeout, &c.Timeout, os.Getenv(EnvTimeout))
	if val := os.Getenv(EnvBars); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Graph.Bars = n
		} else {
			c.warnf("%s '%s' is not a number", EnvBars, val)
		}
	}
	if val := os.Getenv(EnvHTTPAddress); val != "" {
		c.HTTP.Address = val
	}
	if val := os.Getenv(EnvDiscordToken); val != "" {
		c.Discord.Token = val
	}
	if val := os.Getenv(EnvDiscordChan); val != "" {
		c.Discord.ChannelID = val
	}
}
