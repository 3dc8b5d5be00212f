package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerDebounce(t *testing.T) {
	tr := NewTracker(time.Second)

	assert.Equal(t, NoChange, tr.Observe(sampleAt(0, 5*time.Millisecond, true)))
	assert.False(t, tr.Disconnected())

	assert.Equal(t, OutageStarted, tr.Observe(sampleAt(time.Second, 0, false)))
	assert.True(t, tr.Disconnected())
	assert.Equal(t, base.Add(time.Second), tr.Since())

	// 恰好等于去抖时间不算超过
	assert.Equal(t, NoChange, tr.Observe(sampleAt(2*time.Second, 0, false)))
	assert.False(t, tr.Notified())

	assert.Equal(t, OutageConfirmed, tr.Observe(sampleAt(2500*time.Millisecond, 0, false)))
	assert.True(t, tr.Notified())

	// 通知只发一次
	assert.Equal(t, NoChange, tr.Observe(sampleAt(5*time.Second, 0, false)))

	assert.Equal(t, Recovered, tr.Observe(sampleAt(6*time.Second, 5*time.Millisecond, true)))
	assert.False(t, tr.Disconnected())
	assert.True(t, tr.Notified())
	assert.Equal(t, base.Add(time.Second), tr.LastStart())
	assert.True(t, tr.Since().IsZero())
}

func TestTrackerShortOutageNotNotified(t *testing.T) {
	tr := NewTracker(time.Second)

	assert.Equal(t, OutageStarted, tr.Observe(sampleAt(0, 0, false)))
	assert.Equal(t, Recovered, tr.Observe(sampleAt(500*time.Millisecond, time.Millisecond, true)))
	assert.False(t, tr.Notified())

	// 新的断线重新计算去抖
	assert.Equal(t, OutageStarted, tr.Observe(sampleAt(time.Second, 0, false)))
	assert.Equal(t, OutageConfirmed, tr.Observe(sampleAt(3*time.Second, 0, false)))
}
