package monitor

import (
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/downtime"
)

// Snapshot 某一时刻的只读状态，供其他goroutine使用
// 发布之后不再修改
type Snapshot struct {
	At                time.Time
	SessionID         string
	Started           time.Time
	Latest            Status
	Session           core.Stats[uint32]
	Disconnected      bool
	DisconnectedSince time.Time
	Samples           int
	GraphAt           time.Time // Bars最近一次重算的时刻，柱子窗口以它为准
	Bars              []core.Stats[uint16]
	Min               uint16
	Max               uint16
	Interval          time.Duration
	Outages           []downtime.Interval // 最近一次保存时提取的区间
	LastSaved         time.Time
}

// Snapshot 返回最近发布的快照，可以在任意goroutine调用
func (m *Monitor) Snapshot() *Snapshot {
	return m.snapshot.Load()
}

func (m *Monitor) publishSnapshot(now time.Time) {
	min, max := m.graph.Range()
	m.snapshot.Store(&Snapshot{
		At:                now,
		SessionID:         m.writer.ID(),
		Started:           m.started,
		Latest:            m.latest,
		Session:           m.store.Session(),
		Disconnected:      m.tracker.Disconnected(),
		DisconnectedSince: m.tracker.Since(),
		Samples:           m.store.Len(),
		GraphAt:           m.lastGraph,
		Bars:              m.graph.Bars(),
		Min:               min,
		Max:               max,
		Interval:          m.graph.Interval(),
		Outages:           m.outages,
		LastSaved:         m.lastSaved,
	})
}
