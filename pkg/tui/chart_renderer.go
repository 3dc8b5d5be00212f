// Package tui 图表渲染模块
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/graph"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

const (
	barRune     = "█"
	averageRune = "─"
	timeoutRune = "×"
)

// renderBars 把一次柱状图结果渲染成width x height的文本
// 最右边是最新的桶，放不下时丢弃最旧的桶
func renderBars(u monitor.GraphUpdate, width, height int) string {
	if len(u.Bars) == 0 {
		return "没有数据"
	}

	topLabel := fmt.Sprintf("%d ms", u.Max)
	bottomLabel := fmt.Sprintf("%d ms", u.Min)
	labelWidth := len(topLabel)
	if len(bottomLabel) > labelWidth {
		labelWidth = len(bottomLabel)
	}

	// 为X轴和时间刻度留出2行
	rows := height - 2
	cols := width - labelWidth - 2
	if rows <= 0 || cols <= 0 {
		return "可绘制区域过小"
	}

	bars := u.Bars
	if len(bars) > cols {
		bars = bars[len(bars)-cols:]
	}
	barWidth := cols / len(bars)

	clipped := make([]graph.Bar, len(bars))
	for i, stats := range bars {
		clipped[i] = graph.Clip(stats, u.Min, u.Max)
	}

	var lines []string
	for r := 0; r < rows; r++ {
		label := ""
		switch r {
		case 0:
			label = topLabel
		case rows - 1:
			label = bottomLabel
		}

		var line strings.Builder
		fmt.Fprintf(&line, "[gray]%*s │[white]", labelWidth, label)
		for _, b := range clipped {
			line.WriteString(barCell(b, r, rows, u.Min, u.Max, barWidth))
		}
		lines = append(lines, line.String())
	}

	// X轴
	lines = append(lines, fmt.Sprintf("[gray]%*s └%s[white]", labelWidth, "", strings.Repeat("─", cols)))

	if u.Interval <= 0 {
		return strings.Join(lines, "\n")
	}

	// 时间刻度：最旧桶的起点和最新桶的终点
	end := time.Unix(0, graph.End(u.At, u.Interval))
	start := end.Add(-time.Duration(len(bars)) * u.Interval)
	startText := start.Format("15:04:05")
	endText := end.Format("15:04:05")
	space := barWidth*len(bars) - len(startText) - len(endText)
	if space < 1 {
		space = 1
	}
	lines = append(lines, fmt.Sprintf("[gray]%*s  %s%*s%s[white]", labelWidth, "", startText, space, "", endText))

	return strings.Join(lines, "\n")
}

// barCell 柱子在第r行的内容
// 没有数据的桶留空，只有超时的桶在底部画×
func barCell(b graph.Bar, r, rows int, min, max uint16, width int) string {
	if !b.Visible {
		if b.Timeout && r == rows-1 {
			return "[red]" + strings.Repeat(timeoutRune, width) + "[white]"
		}
		return strings.Repeat(" ", width)
	}

	top, size := b.Span(rows, min, max)
	if r < top || r >= top+size {
		return strings.Repeat(" ", width)
	}

	color := "[green]"
	if b.Timeout {
		color = "[red]"
	} else if b.High >= max {
		color = "[yellow]"
	}

	char := barRune
	if avgRow, ok := averageRow(b, rows, min, max); ok && avgRow == r && size > 2 {
		char = averageRune
	}
	return color + strings.Repeat(char, width) + "[white]"
}

// averageRow 平均值所在的行
func averageRow(b graph.Bar, rows int, min, max uint16) (int, bool) {
	if b.Average < min || b.Average > max || max <= min {
		return 0, false
	}
	row := int(float64(rows) * float64(max-b.Average) / float64(max-min))
	if row >= rows {
		row = rows - 1
	}
	return row, true
}
