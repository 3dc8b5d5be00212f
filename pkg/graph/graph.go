// Package graph 把排好序的样本历史划分为按时钟对齐的定宽时间桶
// 每个桶对应图表中的一根柱子
package graph

import (
	"strconv"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// 默认值
const (
	DefaultInterval = time.Second
	DefaultBars     = 40
	DefaultMin      = 0
	DefaultMax      = 50

	// 数值范围输入无法解析时的回退值
	fallbackMin = 0
	fallbackMax = 300
)

// Graph 桶聚合器，只由消费者goroutine访问
type Graph struct {
	interval time.Duration
	min      uint16
	max      uint16
	bars     []core.Stats[uint16]
	skipped  int // 最近一次重算时跳过的未来样本
}

// New 创建聚合器，interval不大于0时使用DefaultInterval
func New(interval time.Duration) *Graph {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Graph{interval: interval, min: DefaultMin, max: DefaultMax}
}

// Init 设置柱子数量和显示范围
// 增加数量时追加空桶，已有的桶保持不变
func (g *Graph) Init(count int, min, max uint16) {
	if count < 0 {
		count = 0
	}
	for len(g.bars) < count {
		g.bars = append(g.bars, core.NewStats[uint16]())
	}
	g.bars = g.bars[:count]
	g.SetRange(min, max)
}

// SetRange 设置显示范围，max小于min时取min+10
func (g *Graph) SetRange(min, max uint16) {
	if max < min {
		max = saturatingAdd(min, 10)
	}
	g.min, g.max = min, max
}

// ParseRange 解析用户输入的显示范围并应用
// 无法解析的max回退为300，min回退为0
func (g *Graph) ParseRange(minText, maxText string) (min, max uint16) {
	max = fallbackMax
	if v, err := strconv.ParseUint(maxText, 10, 16); err == nil {
		max = uint16(v)
	}
	min = fallbackMin
	if v, err := strconv.ParseUint(minText, 10, 16); err == nil {
		min = uint16(v)
	}
	g.SetRange(min, max)
	return g.min, g.max
}

// Range 当前显示范围
func (g *Graph) Range() (min, max uint16) {
	return g.min, g.max
}

// Interval 桶宽度
func (g *Graph) Interval() time.Duration {
	return g.interval
}

// Len 柱子数量
func (g *Graph) Len() int {
	return len(g.bars)
}

// Skipped 最近一次重算中时间戳不早于end_0而被跳过的样本数
func (g *Graph) Skipped() int {
	return g.skipped
}

// Bars 返回桶的副本，下标0最旧，最后一个包含当前时刻
func (g *Graph) Bars() []core.Stats[uint16] {
	return append([]core.Stats[uint16](nil), g.bars...)
}

// End 返回最新桶的上界：now+interval按纪元对齐向下截断
func End(now time.Time, interval time.Duration) int64 {
	iv := int64(interval)
	t := now.UnixNano() + iv
	return t - t%iv
}

// Recompute 用升序样本完全重算所有桶
// 从最新的桶向旧的方向走，从样本尾部向前消费
func (g *Graph) Recompute(samples []core.Sample, now time.Time) {
	iv := int64(g.interval)
	end := End(now, g.interval)
	next := len(samples) - 1
	g.skipped = 0

	for i := len(g.bars) - 1; i >= 0; i-- {
		start := end - iv
		stats := core.NewStats[uint16]()

		for next >= 0 {
			ts := samples[next].Timestamp
			if ts >= end {
				// 时钟回拨或未来样本，不属于任何桶
				g.skipped++
				next--
				continue
			}
			if ts < start {
				break
			}
			stats.Update(samples[next].Outcome.Millis())
			next--
		}

		g.bars[i] = stats
		end = start
	}
}

// Window 返回第i个桶的时间窗口[start, end)
func (g *Graph) Window(i int, now time.Time) (start, end time.Time) {
	iv := int64(g.interval)
	e := End(now, g.interval) - int64(len(g.bars)-1-i)*iv
	return time.Unix(0, e-iv), time.Unix(0, e)
}

func saturatingAdd(a, b uint16) uint16 {
	if a > ^uint16(0)-b {
		return ^uint16(0)
	}
	return a + b
}
