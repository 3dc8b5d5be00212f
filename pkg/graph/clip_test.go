package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

func statsOf(values ...uint16) core.Stats[uint16] {
	s := core.NewStats[uint16]()
	for _, v := range values {
		s.Update(v, true)
	}
	return s
}

func TestClipEmptyInvisible(t *testing.T) {
	s := core.NewStats[uint16]()
	s.Update(0, false)
	bar := Clip(s, 0, 50)
	assert.False(t, bar.Visible)
	assert.True(t, bar.Timeout)

	top, size := bar.Span(10, 0, 50)
	assert.Zero(t, top)
	assert.Zero(t, size)
}

func TestClipRange(t *testing.T) {
	bar := Clip(statsOf(5, 80), 10, 50)
	assert.True(t, bar.Visible)
	assert.Equal(t, uint16(10), bar.Low)
	assert.Equal(t, uint16(50), bar.High)
	assert.Equal(t, uint16(42), bar.Average)
}

func TestSpan(t *testing.T) {
	bar := Clip(statsOf(10, 30), 0, 50)
	top, size := bar.Span(50, 0, 50)
	assert.Equal(t, 20, top)
	assert.Equal(t, 20, size)

	// 单一数值至少占一行
	bar = Clip(statsOf(25), 0, 50)
	top, size = bar.Span(10, 0, 50)
	assert.Equal(t, 1, size)
	assert.Equal(t, 5, top)

	// 全部超出上限时贴在顶部
	bar = Clip(statsOf(200), 0, 50)
	top, size = bar.Span(10, 0, 50)
	assert.Equal(t, 0, top)
	assert.Equal(t, 1, size)
}
