// Package tui 交互控制模块
package tui

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	mainPage  = "main"
	rangePage = "range"

	minLabel = "Min (ms)"
	maxLabel = "Max (ms)"
)

// setupKeyBindings 设置键盘绑定
func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			t.Stop()
			return nil
		}
		// 范围表单打开时按键交给表单
		if t.editing() {
			return event
		}
		if event.Key() != tcell.KeyRune {
			return event
		}

		switch event.Rune() {
		case 'q', 'Q':
			t.Stop()
		case 'r', 'R':
			t.command(t.ctl.ResetStats)
		case 's', 'S':
			t.command(t.ctl.SaveReport)
		case 'g', 'G':
			t.showRangeForm()
		case 'd', 'D':
			t.toggleDiagnostics()
		default:
			return event
		}
		return nil
	})
}

// command 在独立goroutine中执行监控器命令
// 命令等待消费者，而消费者的事件处理器不会等待界面
func (t *TUI) command(fn func() bool) {
	go func() {
		if !fn() {
			t.logLines.Append("[yellow]monitor stopped[white]")
		}
	}()
}

func (t *TUI) editing() bool {
	if t.pages == nil {
		return false
	}
	name, _ := t.pages.GetFrontPage()
	return name == rangePage
}

// showRangeForm 弹出显示范围表单，当前范围作为初始值
func (t *TUI) showRangeForm() {
	min, max := t.currentRange()

	form := tview.NewForm()
	form.AddInputField(minLabel, strconv.Itoa(int(min)), 8, tview.InputFieldInteger, nil)
	form.AddInputField(maxLabel, strconv.Itoa(int(max)), 8, tview.InputFieldInteger, nil)
	form.AddButton("Apply", func() {
		minText := form.GetFormItemByLabel(minLabel).(*tview.InputField).GetText()
		maxText := form.GetFormItemByLabel(maxLabel).(*tview.InputField).GetText()
		t.closeRangeForm()
		t.command(func() bool { return t.ctl.SetRange(minText, maxText) })
	})
	form.AddButton("Cancel", t.closeRangeForm)
	form.SetCancelFunc(t.closeRangeForm)
	form.SetBorder(true)
	form.SetTitle(" Display range ")

	t.pages.AddPage(rangePage, centered(form, 32, 9), true, true)
	t.app.SetFocus(form)
}

func (t *TUI) closeRangeForm() {
	t.pages.RemovePage(rangePage)
	t.app.SetFocus(t.flex)
}

// toggleDiagnostics 展开或收起诊断面板
func (t *TUI) toggleDiagnostics() {
	t.showDiag = !t.showDiag
	height := 0
	if t.showDiag {
		height = t.cfg.DiagnosticsHeight
	}
	if t.flex != nil {
		t.flex.ResizeItem(t.diag, height, 0)
	}
	t.markDirty()
}

// centered 把组件放在屏幕中央
func centered(p tview.Primitive, width, height int) tview.Primitive {
	column := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(p, height, 1, true).
		AddItem(nil, 0, 1, false)
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(column, width, 1, true).
		AddItem(nil, 0, 1, false)
}
