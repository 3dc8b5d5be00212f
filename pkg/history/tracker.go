package history

import (
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// Transition 一个样本引起的实时断线状态变化
type Transition int

const (
	// NoChange 状态未变
	NoChange Transition = iota
	// OutageStarted 第一个超时样本
	OutageStarted
	// OutageConfirmed 断线持续超过去抖时间，只发生一次
	OutageConfirmed
	// Recovered 断线后第一个可达样本
	Recovered
)

// Tracker 随样本到达增量维护"当前是否断线"
// 与停机区间提取不同，它不重新扫描历史
type Tracker struct {
	debounce time.Duration
	active   bool
	start    time.Time
	notified bool
}

// NewTracker 创建实时断线跟踪器
func NewTracker(debounce time.Duration) *Tracker {
	return &Tracker{debounce: debounce}
}

// Observe 处理一个样本
// 样本按到达顺序处理，可能与生成顺序不同
func (t *Tracker) Observe(sample core.Sample) Transition {
	at := sample.Time()

	if sample.Outcome.IsReachable() {
		if !t.active {
			return NoChange
		}
		t.active = false
		return Recovered
	}

	if !t.active {
		t.active = true
		t.start = at
		t.notified = false
		return OutageStarted
	}

	if !t.notified && at.After(t.start.Add(t.debounce)) {
		t.notified = true
		return OutageConfirmed
	}
	return NoChange
}

// Disconnected 最近一个样本是否处于断线中
func (t *Tracker) Disconnected() bool {
	return t.active
}

// Since 当前断线的开始时间，未断线时为零值
func (t *Tracker) Since() time.Time {
	if !t.active {
		return time.Time{}
	}
	return t.start
}

// Notified 当前或刚结束的断线是否已经发出过通知
func (t *Tracker) Notified() bool {
	return t.notified
}

// LastStart 最近一次断线的开始时间，恢复后仍然保留
func (t *Tracker) LastStart() time.Time {
	return t.start
}
