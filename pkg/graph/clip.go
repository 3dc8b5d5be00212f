package graph

import "github.com/Kevin-Rudy/pingtrack/pkg/core"

// Bar 一根柱子在显示范围内的几何信息
type Bar struct {
	Visible bool
	Low     uint16 // 裁剪后的最小值
	High    uint16 // 裁剪后的最大值
	Average uint16
	Timeout bool
	Count   uint16
}

// Clip 把桶的[min, max]裁剪到显示范围
// 没有数据的桶不可见，不能当作0绘制
func Clip(stats core.Stats[uint16], min, max uint16) Bar {
	if stats.Empty() {
		return Bar{Timeout: stats.Timeout}
	}
	avg, _ := stats.Average()
	return Bar{
		Visible: true,
		Low:     clamp(stats.Min, min, max),
		High:    clamp(stats.Max, min, max),
		Average: avg,
		Timeout: stats.Timeout,
		Count:   stats.Count,
	}
}

// Span 把柱子映射到高度为height的画布
// 返回从顶部起的空白行数和柱子高度，柱子高度至少为1
func (b Bar) Span(height int, min, max uint16) (top, size int) {
	if !b.Visible || height <= 0 {
		return 0, 0
	}
	scale := float64(max) - float64(min)
	if scale <= 0 {
		return 0, height
	}
	size = int(float64(height) * float64(b.High-b.Low) / scale)
	if size < 1 {
		size = 1
	}
	top = int(float64(height) * float64(max-b.High) / scale)
	if top+size > height {
		top = height - size
	}
	return top, size
}

func clamp(v, min, max uint16) uint16 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
