// Package downtime 从升序样本历史中提取离线区间
package downtime

import (
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// State 提取器状态
type State int

const (
	// Nominal 没有进行中的离线
	Nominal State = iota
	// Active 离线已开始，等待第一个可达样本
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "nominal"
}

// Interval 一段已结束的离线区间，时间戳为纳秒
type Interval struct {
	Start int64
	End   int64
}

// Duration 区间长度
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.End - iv.Start)
}

// Seconds 区间长度的秒数
func (iv Interval) Seconds() float64 {
	return iv.Duration().Seconds()
}

// StartTime 本地时区的开始时间
func (iv Interval) StartTime() time.Time {
	return time.Unix(0, iv.Start)
}

// EndTime 本地时区的结束时间
func (iv Interval) EndTime() time.Time {
	return time.Unix(0, iv.End)
}

// Extractor 两状态有限状态机，零值处于Nominal
type Extractor struct {
	state State
	start int64
}

// Feed 处理下一个样本，区间闭合时返回它
func (e *Extractor) Feed(sample core.Sample) (Interval, bool) {
	switch e.state {
	case Active:
		if sample.Outcome.IsReachable() {
			iv := Interval{Start: e.start, End: sample.Timestamp}
			e.state = Nominal
			e.start = 0
			return iv, true
		}
	case Nominal:
		if !sample.Outcome.IsReachable() {
			e.state = Active
			e.start = sample.Timestamp
		}
	}
	return Interval{}, false
}

// State 当前状态
func (e *Extractor) State() State {
	return e.state
}

// OpenSince Active时返回离线开始时间
func (e *Extractor) OpenSince() (int64, bool) {
	return e.start, e.state == Active
}

// Extract 单次遍历样本，返回全部已闭合的区间和结束时的状态
// 结束时仍在进行的离线不会输出
func Extract(samples []core.Sample) ([]Interval, State) {
	var (
		e         Extractor
		intervals []Interval
	)
	for _, s := range samples {
		if iv, ok := e.Feed(s); ok {
			intervals = append(intervals, iv)
		}
	}
	return intervals, e.State()
}
