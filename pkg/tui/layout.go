// Package tui 布局管理模块
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = "[yellow]q[white] quit  [yellow]r[white] reset stats  [yellow]s[white] save samples  [yellow]g[white] display range  [yellow]d[white] diagnostics"

// setupUI 设置用户界面布局
func (t *TUI) setupUI() {
	t.header = tview.NewTextView()
	t.header.SetDynamicColors(true)
	t.header.SetText("[green]pingtrack[white] - [yellow]正在连接目标...[white]")

	t.table = tview.NewTable()
	t.table.SetBorders(false)
	t.fillTable(nil)

	t.chart = tview.NewTextView()
	t.chart.SetWordWrap(false)
	t.chart.SetDynamicColors(true)
	t.chart.SetBorder(true)
	t.chart.SetTitle(" Latency ")
	t.chart.SetText("[yellow]等待数据...[white]")

	t.logs = tview.NewTextView()
	t.logs.SetDynamicColors(true)
	t.logs.SetBorder(true)
	t.logs.SetTitle(" Log ")

	t.diag = tview.NewTextView()
	t.diag.SetDynamicColors(true)
	t.diag.SetBorder(true)
	t.diag.SetTitle(" Diagnostics ")

	help := tview.NewTextView()
	help.SetDynamicColors(true)
	help.SetText(helpText)

	// 主垂直布局：状态行、目标表、图表、日志、诊断、帮助
	t.flex = tview.NewFlex()
	t.flex.SetDirection(tview.FlexRow)
	t.flex.AddItem(t.header, 1, 0, false)
	t.flex.AddItem(t.table, len(t.targets)+1, 0, false)
	t.flex.AddItem(t.chart, 0, 3, false)
	t.flex.AddItem(t.logs, 0, 1, false)
	t.flex.AddItem(t.diag, 0, 0, false)
	t.flex.AddItem(help, 1, 0, false)

	t.pages = tview.NewPages()
	t.pages.AddPage(mainPage, t.flex, true, true)

	t.app.SetRoot(t.pages, true)
}

// redraw 在界面goroutine中把内存状态写入组件
func (t *TUI) redraw() {
	if t.testMode {
		return
	}

	t.mu.Lock()
	header := t.headerText()
	rows := make(map[string]destinationRow, len(t.rows))
	for k, v := range t.rows {
		rows[k] = *v
	}
	update, hasGraph := t.graph, t.hasGraph
	t.mu.Unlock()

	t.header.SetText(header)
	t.fillTable(rows)

	_, _, width, height := t.chart.GetInnerRect()
	switch {
	case !hasGraph:
		t.chart.SetText("[yellow]等待数据...[white]")
	case width < t.cfg.MinChartWidth || height < t.cfg.MinChartHeight:
		t.chart.SetText("终端尺寸过小")
	default:
		t.chart.SetText(renderBars(update, width, height))
	}

	t.logs.SetText(strings.Join(t.logLines.Lines(), "\n"))
	t.logs.ScrollToEnd()
	if t.showDiag {
		t.diag.SetText(strings.Join(t.diagLines.Lines(), "\n"))
		t.diag.ScrollToEnd()
	}
}

// headerText 状态行，调用方持有t.mu
func (t *TUI) headerText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[green]pingtrack[white] %s  ", t.sessionID)

	switch {
	case !t.hasStatus:
		b.WriteString("[yellow]正在连接目标...[white]")
	case t.status.Disconnected:
		fmt.Fprintf(&b, "[red]%s[white]", t.status.Text)
	default:
		fmt.Fprintf(&b, "[green]%s[white]", t.status.Text)
	}

	if t.notice.Message != "" {
		fmt.Fprintf(&b, "  [yellow]%s %s[white]", t.notice.At.Format("03:04:05 PM"), t.notice.Message)
	}
	return b.String()
}

// fillTable 按目标顺序填充统计表，没有数据的目标显示N/A
func (t *TUI) fillTable(rows map[string]destinationRow) {
	headers := []string{"目标", "最近", "发送", "丢失", "丢包率"}
	for c, h := range headers {
		t.table.SetCell(0, c, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetExpansion(1).
			SetSelectable(false))
	}

	for i, target := range t.targets {
		cells := []string{target, "N/A", "N/A", "N/A", "N/A"}
		if row, ok := rows[target]; ok {
			cells = row.cells(target)
		}
		color := targetColor(i)
		for c, text := range cells {
			cell := tview.NewTableCell(text).SetExpansion(1)
			if c == 0 {
				cell.SetTextColor(color)
			}
			if c == 1 && !rows[target].last.IsReachable() && rows[target].sent > 0 {
				cell.SetTextColor(tcell.ColorRed)
			}
			t.table.SetCell(i+1, c, cell)
		}
	}
}

// cells 表中一行的文本
func (r destinationRow) cells(target string) []string {
	last := r.last.String()
	if r.last.IsReachable() {
		last += " ms"
	}
	return []string{
		target,
		last,
		fmt.Sprintf("%d", r.sent),
		fmt.Sprintf("%d", r.lost),
		formatLoss(r.sent, r.lost),
	}
}

// safeUIUpdate 安全地执行UI更新操作
func (t *TUI) safeUIUpdate(updateFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			// 如果应用已经停止，忽略panic
		}
	}()
	t.app.QueueUpdateDraw(updateFunc)
}
