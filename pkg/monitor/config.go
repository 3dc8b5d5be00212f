package monitor

import (
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/graph"
)

// Config 监控器参数
type Config struct {
	Tick          time.Duration // 消费者定时器周期
	GraphRefresh  time.Duration // 柱状图重算的最小间隔
	GraphInterval time.Duration // 每根柱子的时间宽度
	Bars          int
	Min           uint16
	Max           uint16
	AutoSave      time.Duration // 离线区间日志的自动保存周期
	Debounce      time.Duration // 断线超过该时长才发通知
	Retention     time.Duration // 0表示保留全部样本
	RecentOutages int           // 快照中保留的最近离线区间数量
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Tick:          250 * time.Millisecond,
		GraphRefresh:  250 * time.Millisecond,
		GraphInterval: graph.DefaultInterval,
		Bars:          graph.DefaultBars,
		Min:           graph.DefaultMin,
		Max:           graph.DefaultMax,
		AutoSave:      5 * time.Minute,
		Debounce:      time.Second,
		RecentOutages: 20,
	}
}
