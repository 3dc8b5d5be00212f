package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/graph"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

// mockController 记录界面发出的命令
type mockController struct {
	calls chan string
}

func newMockController() *mockController {
	return &mockController{calls: make(chan string, 10)}
}

func (m *mockController) ResetStats() bool {
	m.calls <- "reset"
	return true
}

func (m *mockController) SaveReport() bool {
	m.calls <- "save"
	return false
}

func (m *mockController) SetRange(minText, maxText string) bool {
	m.calls <- "range " + minText + ":" + maxText
	return true
}

func waitCall(t *testing.T, m *mockController) string {
	t.Helper()
	select {
	case c := <-m.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("Expected a controller call")
		return ""
	}
}

var at = time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local)

// TestNewTUI 测试TUI实例创建
func TestNewTUI(t *testing.T) {
	tui := newTUIForTest(newMockController(), []string{"1.1.1.1", "8.8.8.8"}, nil)

	if tui.rows == nil {
		t.Error("TUI should have initialized rows map")
	}

	if !tui.testMode {
		t.Error("TUI should be in test mode")
	}

	if tui.cfg.MaxLogLines != DefaultConfig().MaxLogLines {
		t.Errorf("Expected MaxLogLines=%d, got %d", DefaultConfig().MaxLogLines, tui.cfg.MaxLogLines)
	}

	min, max := tui.currentRange()
	if min != graph.DefaultMin || max != graph.DefaultMax {
		t.Errorf("Expected default range before first graph, got %d:%d", min, max)
	}
}

// TestStatusUpdatesRows 测试每个目标的统计
func TestStatusUpdatesRows(t *testing.T) {
	tui := newTUIForTest(newMockController(), []string{"1.1.1.1"}, nil)

	tui.onStatus(monitor.Status{At: at, Destination: "1.1.1.1", Outcome: core.Reachable(12 * time.Millisecond), Text: "12 ms"})
	tui.onStatus(monitor.Status{At: at, Destination: "1.1.1.1", Outcome: core.Unreachable(), Disconnected: true, Text: monitor.DisconnectedText})

	row := tui.rows["1.1.1.1"]
	if row.sent != 2 {
		t.Errorf("Expected sent=2, got %d", row.sent)
	}
	if row.lost != 1 {
		t.Errorf("Expected lost=1, got %d", row.lost)
	}

	cells := row.cells("1.1.1.1")
	if cells[1] != "timeout" {
		t.Errorf("Expected last 'timeout', got '%s'", cells[1])
	}
	if cells[4] != "50.0%" {
		t.Errorf("Expected loss '50.0%%', got '%s'", cells[4])
	}

	header := tui.headerText()
	if !strings.Contains(header, "[red]Disconnected") {
		t.Errorf("Expected red Disconnected in header, got '%s'", header)
	}

	if !tui.dirty.Load() {
		t.Error("Status update should mark the view dirty")
	}
}

// TestHeaderShowsNotification 测试一次性提示显示在状态行
func TestHeaderShowsNotification(t *testing.T) {
	tui := newTUIForTest(newMockController(), nil, nil)

	if !strings.Contains(tui.headerText(), "正在连接目标") {
		t.Error("Header should show the waiting text before any status")
	}

	tui.onNotification(monitor.Notification{At: at, Message: monitor.ReportSavedText})
	if header := tui.headerText(); !strings.Contains(header, "02:00:00 PM Report saved") {
		t.Errorf("Expected notification in header, got '%s'", header)
	}
}

// TestLogPane 测试日志面板的格式和转义
func TestLogPane(t *testing.T) {
	tui := newTUIForTest(newMockController(), nil, nil)

	tui.onLog(monitor.LogLine{At: at, Text: "Saving samples"})
	tui.onLog(monitor.LogLine{At: at, Text: "error saving timeouts log: [denied]", Error: true})

	lines := tui.logLines.Lines()
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}
	if lines[0] != "2024-03-01 at 02:00:00 PM: Saving samples" {
		t.Errorf("Unexpected log line '%s'", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[red]") {
		t.Errorf("Error lines should be red, got '%s'", lines[1])
	}
	if strings.Contains(lines[1], "[denied]") {
		t.Errorf("Brackets should be escaped, got '%s'", lines[1])
	}
}

// TestLineBufferWrite 测试按行切分和上限
func TestLineBufferWrite(t *testing.T) {
	changes := 0
	b := newLineBuffer(3, func() { changes++ })

	b.Write([]byte("one\r\ntw"))
	b.Write([]byte("o\nthree\nfour\n"))

	lines := b.Lines()
	expected := []string{"two", "three", "four"}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %v", len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Expected line %d '%s', got '%s'", i, expected[i], lines[i])
		}
	}
	if changes != 2 {
		t.Errorf("Expected 2 change callbacks, got %d", changes)
	}

	// 不完整的行不可见
	b.Write([]byte("partial"))
	if got := b.Lines(); got[len(got)-1] != "four" {
		t.Errorf("Partial line should stay buffered, got '%s'", got[len(got)-1])
	}
}

// TestRenderBars 测试柱状图渲染
func TestRenderBars(t *testing.T) {
	data := core.NewStats[uint16]()
	data.Update(10, true)
	data.Update(30, true)

	timeoutOnly := core.NewStats[uint16]()
	timeoutOnly.Update(0, false)

	u := monitor.GraphUpdate{
		At:       at,
		Bars:     []core.Stats[uint16]{core.NewStats[uint16](), timeoutOnly, data},
		Min:      0,
		Max:      50,
		Interval: time.Second,
	}

	out := renderBars(u, 30, 8)
	lines := strings.Split(out, "\n")
	if len(lines) != 8 {
		t.Fatalf("Expected 8 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "50 ms") {
		t.Errorf("Top line should carry the max label, got '%s'", lines[0])
	}
	if !strings.Contains(lines[5], "0 ms") {
		t.Errorf("Bottom row should carry the min label, got '%s'", lines[5])
	}
	if !strings.Contains(lines[5], timeoutRune) {
		t.Error("Timeout-only bucket should be marked on the bottom row")
	}
	if !strings.Contains(out, barRune) {
		t.Error("Bucket with data should be drawn")
	}
	if !strings.Contains(lines[7], "13:59:58") || !strings.Contains(lines[7], "14:00:01") {
		t.Errorf("Unexpected time axis '%s'", lines[7])
	}
}

// TestRenderBarsSmall 测试放不下时保留最新的桶
func TestRenderBarsSmall(t *testing.T) {
	if out := renderBars(monitor.GraphUpdate{}, 30, 8); out != "没有数据" {
		t.Errorf("Expected no data text, got '%s'", out)
	}

	bars := make([]core.Stats[uint16], 40)
	for i := range bars {
		bars[i] = core.NewStats[uint16]()
	}
	u := monitor.GraphUpdate{At: at, Bars: bars, Max: 50, Interval: time.Second}
	if out := renderBars(u, 5, 8); out != "可绘制区域过小" {
		t.Errorf("Expected too small text, got '%s'", out)
	}

	out := renderBars(u, 20, 4)
	if lines := strings.Split(out, "\n"); len(lines) != 4 {
		t.Errorf("Expected 4 lines, got %d", len(lines))
	}
}

// TestCommandsRunOffUIGoroutine 测试命令转发到控制器
func TestCommandsRunOffUIGoroutine(t *testing.T) {
	ctl := newMockController()
	tui := newTUIForTest(ctl, nil, nil)

	tui.command(ctl.ResetStats)
	if c := waitCall(t, ctl); c != "reset" {
		t.Errorf("Expected reset, got %s", c)
	}

	tui.command(ctl.SaveReport)
	if c := waitCall(t, ctl); c != "save" {
		t.Errorf("Expected save, got %s", c)
	}

	// 控制器返回false时记录一行提示
	deadline := time.Now().Add(time.Second)
	for len(tui.logLines.Lines()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(tui.logLines.Lines()) != 1 {
		t.Error("Expected a log line after a refused command")
	}
}

// TestToggleDiagnostics 测试诊断面板开关
func TestToggleDiagnostics(t *testing.T) {
	tui := newTUIForTest(newMockController(), nil, nil)
	tui.toggleDiagnostics()
	if !tui.showDiag {
		t.Error("Diagnostics should be shown after first toggle")
	}
	tui.toggleDiagnostics()
	if tui.showDiag {
		t.Error("Diagnostics should be hidden after second toggle")
	}
}

// TestConfigValidation 测试配置验证
func TestConfigValidation(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	cases := []*Config{
		NewConfigWithOptions(WithRefreshInterval(0)),
		NewConfigWithOptions(WithRefreshInterval(time.Millisecond)),
		NewConfigWithOptions(WithChartSize(0, 5)),
		NewConfigWithOptions(WithChartSize(20, 0)),
		NewConfigWithOptions(WithMaxLogLines(0)),
		NewConfigWithOptions(WithDiagnosticsHeight(2)),
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("Case %d should fail validation", i)
		}
	}

	c := NewConfigWithOptions(WithRefreshInterval(time.Second), WithMaxLogLines(10))
	if c.RefreshInterval != time.Second || c.MaxLogLines != 10 {
		t.Errorf("Options not applied: %+v", c)
	}
}

// TestFormatLoss 测试丢包率格式
func TestFormatLoss(t *testing.T) {
	if got := formatLoss(0, 0); got != "N/A" {
		t.Errorf("Expected N/A, got %s", got)
	}
	if got := formatLoss(3, 1); got != "33.3%" {
		t.Errorf("Expected 33.3%%, got %s", got)
	}
}
