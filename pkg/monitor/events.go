package monitor

import (
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/history"
)

// Status 每个样本之后的实时状态
type Status struct {
	At           time.Time
	Destination  string
	Outcome      core.Outcome
	Disconnected bool
	Session      core.Stats[uint32]
	Text         string
}

// Notification 一次性的提示，例如"Disconnected"和"Report saved"
type Notification struct {
	At      time.Time
	Message string
}

// LogLine 面向用户的日志行
type LogLine struct {
	At    time.Time
	Text  string
	Error bool
}

// GraphUpdate 柱状图重算完成
type GraphUpdate struct {
	At       time.Time
	Bars     []core.Stats[uint16]
	Min      uint16
	Max      uint16
	Interval time.Duration
	Samples  int // 重算时内存中的样本数量
}

// Outage 实时断线状态变化
type Outage struct {
	Transition history.Transition
	Since      time.Time // 断线开始时间
	At         time.Time // 引起变化的样本时间
	Notified   bool      // 这次断线是否已经超过去抖时间
}

// SaveKind 写入的日志种类
type SaveKind string

const (
	SaveSamples  SaveKind = "samples"
	SaveDowntime SaveKind = "timeouts"
)

// SaveResult 一次日志写入的结果
type SaveResult struct {
	Kind SaveKind
	Path string
	Err  error
}

// Events 监控器发出的全部事件
// 处理器在消费者goroutine中按注册顺序同步调用，必须在Run之前注册
type Events struct {
	Sample       core.Subscribers[core.Sample]
	Status       core.Subscribers[Status]
	Notification core.Subscribers[Notification]
	Log          core.Subscribers[LogLine]
	Graph        core.Subscribers[GraphUpdate]
	Outage       core.Subscribers[Outage]
	Save         core.Subscribers[SaveResult]
}
