// Package monitor 是采样引擎的消费者
// 样本历史、会话统计和柱状图只由Run所在的goroutine访问
package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gopkg.in/op/go-logging.v1"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/downtime"
	"github.com/Kevin-Rudy/pingtrack/pkg/graph"
	"github.com/Kevin-Rudy/pingtrack/pkg/history"
	"github.com/Kevin-Rudy/pingtrack/pkg/sessionlog"
)

// 用户可见文本
const (
	DisconnectedText = "Disconnected"
	ReportSavedText  = "Report saved"

	clockLayout   = "03:04:05 PM"
	logLineLayout = "2006-01-02 at 03:04:05 PM"
)

// command 在消费者goroutine中执行的操作，执行完毕后关闭done
type command struct {
	fn   func(now time.Time)
	done chan struct{}
}

// Monitor 单一所有者的消费者
type Monitor struct {
	Events Events

	cfg     *Config
	source  core.DataSource
	writer  *sessionlog.Writer
	log     *logging.Logger
	store   *history.Store
	tracker *history.Tracker
	graph   *graph.Graph

	started      time.Time
	lastGraph    time.Time
	lastSaved    time.Time
	lastSaveTry  time.Time
	latest       Status
	outages      []downtime.Interval
	archived     []downtime.Interval // 随样本淘汰的已闭合区间，只追加
	sourceClosed bool

	commands chan command
	done     chan struct{}
	snapshot atomic.Pointer[Snapshot]
}

// New 创建监控器，started用于自动保存的计时
func New(cfg *Config, source core.DataSource, writer *sessionlog.Writer, log *logging.Logger, started time.Time) *Monitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logging.MustGetLogger("monitor")
	}

	g := graph.New(cfg.GraphInterval)
	g.Init(cfg.Bars, cfg.Min, cfg.Max)

	m := &Monitor{
		cfg:         cfg,
		source:      source,
		writer:      writer,
		log:         log,
		store:       history.NewStore(cfg.Retention),
		tracker:     history.NewTracker(cfg.Debounce),
		graph:       g,
		started:     started,
		lastSaved:   started,
		lastSaveTry: started,
		commands:    make(chan command),
		done:        make(chan struct{}),
	}
	m.publishSnapshot(started)
	return m
}

// Run 启动生产者并运行消费者循环，直到ctx结束
// 退出前停止生产者、取出剩余样本并写一次离线区间日志
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.done)

	m.source.Start()
	m.logf(m.started, "Started %s", m.started.Format(logLineLayout))

	ticker := time.NewTicker(m.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown(time.Now())
			return nil
		case now := <-ticker.C:
			m.tick(now)
		case cmd := <-m.commands:
			now := time.Now()
			cmd.fn(now)
			m.publishSnapshot(now)
			close(cmd.done)
		}
	}
}

// tick 一个定时周期：取样本、按节奏重算柱状图、按需自动保存
func (m *Monitor) tick(now time.Time) {
	m.drain()

	if now.Sub(m.lastGraph) >= m.cfg.GraphRefresh {
		m.refreshGraph(now)
	}

	if now.Sub(m.lastSaveTry) >= m.cfg.AutoSave {
		m.saveDowntime(now)
	}

	m.publishSnapshot(now)
}

func (m *Monitor) drain() {
	_, closed := m.store.TryDrain(m.source.DataStream(), m.process)
	if closed && !m.sourceClosed {
		m.sourceClosed = true
		m.log.Warning("sample stream closed")
	}
}

// process 每个新样本：更新实时断线状态并发布状态
func (m *Monitor) process(sample core.Sample) {
	at := sample.Time()
	m.Events.Sample.Publish(sample)

	switch tr := m.tracker.Observe(sample); tr {
	case history.OutageStarted:
		m.Events.Outage.Publish(Outage{Transition: tr, Since: at, At: at})
	case history.OutageConfirmed:
		m.Events.Outage.Publish(Outage{Transition: tr, Since: m.tracker.Since(), At: at, Notified: true})
		m.notify(at, DisconnectedText)
	case history.Recovered:
		start := m.tracker.LastStart()
		m.Events.Outage.Publish(Outage{Transition: tr, Since: start, At: at, Notified: m.tracker.Notified()})
		if m.tracker.Notified() {
			m.logf(at, "Disconnected at %s for %d seconds",
				start.Format(clockLayout), int64(at.Sub(start)/time.Second))
		}
	}

	session := m.store.Session()
	status := Status{
		At:           at,
		Destination:  sample.Destination,
		Outcome:      sample.Outcome,
		Disconnected: m.tracker.Disconnected(),
		Session:      session,
		Text:         StatusText(sample.Outcome, session),
	}
	m.latest = status
	m.Events.Status.Publish(status)
}

// StatusText 状态栏文本："<rtt> ms (<min>:<max>) <avg>" 或 "Disconnected"
func StatusText(outcome core.Outcome, session core.Stats[uint32]) string {
	if !outcome.IsReachable() {
		return DisconnectedText
	}
	mean, _ := session.Mean()
	if session.Empty() {
		return fmt.Sprintf("%s ms", outcome)
	}
	return fmt.Sprintf("%s ms (%d:%d) %.1f", outcome, session.Min, session.Max, mean)
}

func (m *Monitor) refreshGraph(now time.Time) {
	m.store.Sort()
	if dropped := m.store.Compact(now); len(dropped) > 0 {
		// 淘汰的前缀以可达样本结尾，区间都已闭合
		closed, _ := downtime.Extract(dropped)
		m.archived = append(m.archived, closed...)
		m.log.Debugf("retention dropped %d samples, archived %d outages", len(dropped), len(closed))
	}
	m.graph.Recompute(m.store.Samples(), now)
	if skipped := m.graph.Skipped(); skipped > 0 {
		m.log.Debugf("%d samples newer than the newest bar", skipped)
	}
	m.lastGraph = now

	min, max := m.graph.Range()
	m.Events.Graph.Publish(GraphUpdate{
		At:       now,
		Bars:     m.graph.Bars(),
		Min:      min,
		Max:      max,
		Interval: m.graph.Interval(),
		Samples:  m.store.Len(),
	})
}

// saveDowntime 重写离线区间日志，包括已随样本淘汰的区间
// 失败只记录，不影响下一次
func (m *Monitor) saveDowntime(now time.Time) {
	m.lastSaveTry = now
	m.store.Sort()
	current, _ := downtime.Extract(m.store.Samples())
	intervals := make([]downtime.Interval, 0, len(m.archived)+len(current))
	intervals = append(append(intervals, m.archived...), current...)
	m.outages = recent(intervals, m.cfg.RecentOutages)

	err := m.writer.WriteDowntime(intervals)
	m.Events.Save.Publish(SaveResult{Kind: SaveDowntime, Path: m.writer.TimeoutsPath(), Err: err})
	if err != nil {
		m.errorf(now, "error saving timeouts log: %v", err)
		return
	}
	m.lastSaved = now
}

// saveSamples 写原始样本日志
func (m *Monitor) saveSamples(now time.Time) {
	m.logf(now, "Saving samples")
	m.store.Sort()

	err := m.writer.WriteSamples(m.store.Samples())
	m.Events.Save.Publish(SaveResult{Kind: SaveSamples, Path: m.writer.SamplesPath(), Err: err})
	if err != nil {
		m.errorf(now, "error saving samples log: %v", err)
		return
	}
	m.notify(now, ReportSavedText)
}

func (m *Monitor) shutdown(now time.Time) {
	// Stop返回时所有生产者都已退出，通道已关闭
	m.source.Stop()
	m.drain()
	m.saveDowntime(now)
	m.publishSnapshot(now)
	m.log.Noticef("stopped after %s with %d samples", now.Sub(m.started).Round(time.Second), m.store.Len())
}

func (m *Monitor) notify(at time.Time, message string) {
	m.log.Notice(message)
	m.Events.Notification.Publish(Notification{At: at, Message: message})
}

func (m *Monitor) logf(at time.Time, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	m.log.Notice(text)
	m.Events.Log.Publish(LogLine{At: at, Text: text})
}

func (m *Monitor) errorf(at time.Time, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	m.log.Error(text)
	m.Events.Log.Publish(LogLine{At: at, Text: text, Error: true})
}

// post 把操作交给消费者goroutine并等待执行完毕
// Run退出后直接丢弃，返回false
// 不能在事件处理器中调用，处理器本身就运行在消费者goroutine中
func (m *Monitor) post(fn func(now time.Time)) bool {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case m.commands <- cmd:
	case <-m.done:
		return false
	}
	<-cmd.done
	return true
}

// ResetStats 清空会话统计，样本历史不变
func (m *Monitor) ResetStats() bool {
	return m.post(func(now time.Time) {
		m.store.ResetSession()
		m.logf(now, "Statistics reset")
	})
}

// SaveReport 写原始样本日志
func (m *Monitor) SaveReport() bool {
	return m.post(m.saveSamples)
}

// SetRange 解析并设置显示范围，无法解析的值使用回退值
func (m *Monitor) SetRange(minText, maxText string) bool {
	return m.post(func(now time.Time) {
		min, max := m.graph.ParseRange(minText, maxText)
		m.log.Infof("display range %d:%d", min, max)
		m.refreshGraph(now)
	})
}

// FormatLogLine 日志面板中一行的格式
func FormatLogLine(l LogLine) string {
	return l.At.Format(logLineLayout) + ": " + l.Text
}

func recent(intervals []downtime.Interval, n int) []downtime.Interval {
	if n <= 0 || len(intervals) <= n {
		return intervals
	}
	return append([]downtime.Interval(nil), intervals[len(intervals)-n:]...)
}
