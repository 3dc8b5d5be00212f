// Package tui 提供终端界面：状态行、各目标统计、延迟柱状图和日志面板
// 监控器事件只更新内存中的状态，界面按固定节奏重绘
package tui

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rivo/tview"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/graph"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

// Controller 界面可以触发的监控器命令
// 这些调用会阻塞到消费者执行完毕，只能在界面goroutine之外调用
type Controller interface {
	ResetStats() bool
	SaveReport() bool
	SetRange(minText, maxText string) bool
}

// destinationRow 单个目标的显示统计
type destinationRow struct {
	last core.Outcome
	sent int
	lost int
}

// TUI 主界面结构
type TUI struct {
	app    *tview.Application
	pages  *tview.Pages
	flex   *tview.Flex
	header *tview.TextView
	table  *tview.Table
	chart  *tview.TextView
	logs   *tview.TextView
	diag   *tview.TextView

	ctl       Controller
	cfg       *Config
	targets   []string // 保持命令行输入的目标顺序
	sessionID string

	// 以下字段由事件处理器写入，界面goroutine读取
	mu        sync.Mutex
	status    monitor.Status
	hasStatus bool
	notice    monitor.Notification
	rows      map[string]*destinationRow
	graph     monitor.GraphUpdate
	hasGraph  bool

	logLines  *lineBuffer
	diagLines *lineBuffer
	showDiag  bool
	dirty     atomic.Bool

	stopChan chan struct{}
	stopOnce sync.Once

	// 测试模式标志
	testMode bool
}

// New 创建界面
func New(ctl Controller, targets []string, sessionID string, cfg *Config) *TUI {
	t := newTUI(ctl, targets, sessionID, cfg)
	t.setupUI()
	t.setupKeyBindings()
	return t
}

// newTUIForTest 创建不初始化图形组件的实例
func newTUIForTest(ctl Controller, targets []string, cfg *Config) *TUI {
	t := newTUI(ctl, targets, "test", cfg)
	t.testMode = true
	return t
}

func newTUI(ctl Controller, targets []string, sessionID string, cfg *Config) *TUI {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	t := &TUI{
		app:       tview.NewApplication(),
		ctl:       ctl,
		cfg:       cfg,
		targets:   targets,
		sessionID: sessionID,
		rows:      make(map[string]*destinationRow),
		stopChan:  make(chan struct{}),
	}
	t.logLines = newLineBuffer(cfg.MaxLogLines, t.markDirty)
	t.diagLines = newLineBuffer(cfg.MaxLogLines, t.markDirty)
	return t
}

// Subscribe 注册到监控器事件，必须在监控器Run之前调用
// 处理器运行在消费者goroutine中，只修改内存状态
func (t *TUI) Subscribe(events *monitor.Events) {
	events.Status.Subscribe(t.onStatus)
	events.Notification.Subscribe(t.onNotification)
	events.Log.Subscribe(t.onLog)
	events.Graph.Subscribe(t.onGraph)
}

// Diagnostics 返回诊断面板的writer，用于挂到日志后端
func (t *TUI) Diagnostics() io.Writer {
	return t.diagLines
}

// Run 运行界面直到用户退出或ctx结束
func (t *TUI) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	go t.refreshLoop(ctx)
	go func() {
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.stopChan:
		}
	}()

	err := t.app.Run()
	t.Stop()
	return err
}

// Stop 停止界面，可以重复调用
func (t *TUI) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.app.Stop()
		// Run还没有初始化屏幕时Stop不起作用，排队一次让它启动后立即退出
		go t.app.QueueUpdate(t.app.Stop)
	})
}

// Done 界面退出后关闭
func (t *TUI) Done() <-chan struct{} {
	return t.stopChan
}

// refreshLoop 按固定节奏重绘，只在状态变化时排队
func (t *TUI) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.RefreshInterval)
	defer ticker.Stop()

	t.markDirty()
	for {
		select {
		case <-ticker.C:
			if t.dirty.Swap(false) {
				t.safeUIUpdate(t.redraw)
			}
		case <-t.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (t *TUI) markDirty() {
	t.dirty.Store(true)
}

func (t *TUI) onStatus(s monitor.Status) {
	t.mu.Lock()
	t.status = s
	t.hasStatus = true
	row, ok := t.rows[s.Destination]
	if !ok {
		row = &destinationRow{}
		t.rows[s.Destination] = row
	}
	row.last = s.Outcome
	row.sent++
	if !s.Outcome.IsReachable() {
		row.lost++
	}
	t.mu.Unlock()
	t.markDirty()
}

func (t *TUI) onNotification(n monitor.Notification) {
	t.mu.Lock()
	t.notice = n
	t.mu.Unlock()
	t.markDirty()
}

func (t *TUI) onLog(l monitor.LogLine) {
	text := monitor.FormatLogLine(l)
	if l.Error {
		text = "[red]" + tview.Escape(text) + "[white]"
	} else {
		text = tview.Escape(text)
	}
	t.logLines.Append(text)
}

func (t *TUI) onGraph(g monitor.GraphUpdate) {
	t.mu.Lock()
	t.graph = g
	t.hasGraph = true
	t.mu.Unlock()
	t.markDirty()
}

// currentRange 最近一次柱状图的显示范围
func (t *TUI) currentRange() (min, max uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasGraph {
		return graph.DefaultMin, graph.DefaultMax
	}
	return t.graph.Min, t.graph.Max
}
