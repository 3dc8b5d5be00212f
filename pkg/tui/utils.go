// Package tui 工具函数和辅助类型
package tui

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// formatLoss 丢包率
func formatLoss(sent, lost int) string {
	if sent == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", float64(lost)*100/float64(sent))
}

// targetColor 根据目标在输入中的位置分配颜色，保证颜色稳定
func targetColor(i int) tcell.Color {
	colorSequence := []tcell.Color{
		tcell.ColorGreen, tcell.ColorYellow, tcell.ColorBlue, tcell.ColorFuchsia,
		tcell.ColorAqua, tcell.ColorOrange, tcell.ColorPurple, tcell.ColorLime,
		tcell.ColorPink, tcell.ColorDarkCyan,
	}
	return colorSequence[i%len(colorSequence)]
}

// lineBuffer 有上限的行缓冲，也可以作为io.Writer接收日志后端的输出
type lineBuffer struct {
	mu       sync.Mutex
	lines    []string
	max      int
	partial  []byte
	onChange func()
}

func newLineBuffer(max int, onChange func()) *lineBuffer {
	return &lineBuffer{max: max, onChange: onChange}
}

// Append 追加一行已经转义过的文本
func (b *lineBuffer) Append(line string) {
	b.mu.Lock()
	b.appendLocked(line)
	b.mu.Unlock()
	if b.onChange != nil {
		b.onChange()
	}
}

func (b *lineBuffer) appendLocked(line string) {
	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append(b.lines[:0], b.lines[over:]...)
	}
}

// Write 按换行切分，不完整的行留到下一次
func (b *lineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	b.partial = append(b.partial, p...)
	changed := false
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(b.partial[:i]), "\r")
		b.partial = b.partial[i+1:]
		b.appendLocked(tview.Escape(line))
		changed = true
	}
	b.mu.Unlock()
	if changed && b.onChange != nil {
		b.onChange()
	}
	return len(p), nil
}

// Lines 返回当前行的副本
func (b *lineBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}
