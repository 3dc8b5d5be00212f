package core

import (
	"context"
	"testing"
	"time"
)

// TestOutcome 测试可达/不可达结果
func TestOutcome(t *testing.T) {
	ok := Reachable(15*time.Millisecond + 700*time.Microsecond)
	if !ok.IsReachable() {
		t.Error("Expected reachable outcome")
	}
	ms, reachable := ok.Millis()
	if !reachable || ms != 15 {
		t.Errorf("Expected 15ms (truncated), got %d (reachable=%v)", ms, reachable)
	}
	if ok.String() != "15" {
		t.Errorf("Expected '15', got '%s'", ok.String())
	}

	lost := Unreachable()
	if lost.IsReachable() {
		t.Error("Expected unreachable outcome")
	}
	if _, reachable := lost.RTT(); reachable {
		t.Error("Unreachable outcome should not carry an RTT")
	}
	if lost.String() != TimeoutText {
		t.Errorf("Expected '%s', got '%s'", TimeoutText, lost.String())
	}

	// 零值即不可达
	var zero Outcome
	if zero.IsReachable() {
		t.Error("Zero outcome should be unreachable")
	}
}

// TestOutcomeMillisSaturates 测试超出uint16范围时饱和
func TestOutcomeMillisSaturates(t *testing.T) {
	o := Reachable(2 * time.Minute)
	ms, _ := o.Millis()
	if ms != 65535 {
		t.Errorf("Expected saturation at 65535, got %d", ms)
	}
	ms32, _ := MillisAs[uint32](o)
	if ms32 != 120000 {
		t.Errorf("Expected 120000, got %d", ms32)
	}

	neg := Reachable(-time.Second)
	if ms, _ := neg.Millis(); ms != 0 {
		t.Errorf("Expected negative RTT clamped to 0, got %d", ms)
	}
}

// TestSample 测试样本时间换算
func TestSample(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 20, 30, 123456789, time.UTC)
	s := NewSample("8.8.8.8", at, Reachable(12*time.Millisecond))

	if s.Destination != "8.8.8.8" {
		t.Errorf("Expected destination '8.8.8.8', got '%s'", s.Destination)
	}
	if s.Timestamp != at.UnixNano() {
		t.Errorf("Expected timestamp %d, got %d", at.UnixNano(), s.Timestamp)
	}
	if !s.Time().Equal(at) {
		t.Errorf("Expected time %v, got %v", at, s.Time())
	}
}

// mockProber 模拟探测器，用于验证接口形状
type mockProber struct {
	target string
	rtt    time.Duration
	err    error
	closed bool
}

func (m *mockProber) Target() string { return m.target }

func (m *mockProber) Probe(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.rtt, m.err
}

func (m *mockProber) Close() error {
	m.closed = true
	return nil
}

// TestProberInterface 测试Prober接口
func TestProberInterface(t *testing.T) {
	var p Prober = &mockProber{target: "1.1.1.1", rtt: 9 * time.Millisecond}

	rtt, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rtt != 9*time.Millisecond {
		t.Errorf("Expected 9ms, got %v", rtt)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Probe(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}

	if err := p.Close(); err != nil {
		t.Errorf("Unexpected close error: %v", err)
	}
	if !p.(*mockProber).closed {
		t.Error("Prober should be closed")
	}
}
