// Package core 定义了监控框架的核心接口和数据结构
// 这些接口保证了采样引擎与探测实现、展示层的完全解耦
package core

import (
	"context"
	"strconv"
	"time"
)

// Outcome 表示单次探测的结果：可达(携带往返时间)或不可达
// 零值即为不可达
type Outcome struct {
	rtt       time.Duration
	reachable bool
}

// Reachable 构造一个可达结果
func Reachable(rtt time.Duration) Outcome {
	if rtt < 0 {
		rtt = 0
	}
	return Outcome{rtt: rtt, reachable: true}
}

// Unreachable 构造一个不可达(超时或失败)结果
func Unreachable() Outcome {
	return Outcome{}
}

// IsReachable 是否收到了回复
func (o Outcome) IsReachable() bool {
	return o.reachable
}

// RTT 返回往返时间，不可达时第二个返回值为false
func (o Outcome) RTT() (time.Duration, bool) {
	return o.rtt, o.reachable
}

// Millis 返回截断到毫秒的往返时间，超过uint16范围时饱和
func (o Outcome) Millis() (uint16, bool) {
	return MillisAs[uint16](o)
}

// String 可达时为毫秒数，不可达时为 "timeout"
func (o Outcome) String() string {
	if !o.reachable {
		return TimeoutText
	}
	ms, _ := MillisAs[uint64](o)
	return strconv.FormatUint(ms, 10)
}

// TimeoutText 日志与状态中表示超时的文本
const TimeoutText = "timeout"

// MillisAs 把结果换算为指定无符号类型的毫秒数，超出类型范围时饱和
func MillisAs[T Unsigned](o Outcome) (T, bool) {
	if !o.reachable {
		return 0, false
	}
	ms := uint64(o.rtt / time.Millisecond)
	if limit := uint64(^T(0)); ms > limit {
		ms = limit
	}
	return T(ms), true
}

// Sample 表示一次探测观测，创建后不可修改
type Sample struct {
	Destination string  // 目标地址
	Timestamp   int64   // 发送时刻，Unix纪元以来的纳秒数
	Outcome     Outcome // 探测结果
}

// NewSample 创建一个观测样本
func NewSample(destination string, at time.Time, outcome Outcome) Sample {
	return Sample{
		Destination: destination,
		Timestamp:   at.UnixNano(),
		Outcome:     outcome,
	}
}

// Time 以本地时区返回样本时间
func (s Sample) Time() time.Time {
	return time.Unix(0, s.Timestamp)
}

// Prober 定义了外部ping能力
// 每个实例绑定一个目标，只被一个生产者goroutine使用
type Prober interface {
	// Target 返回探测目标
	Target() string

	// Probe 发送一次探测并等待回复
	// 超时由ctx的deadline限定，任何失败都返回非nil错误
	Probe(ctx context.Context) (time.Duration, error)

	// Close 释放底层套接字或句柄
	Close() error
}

// DataSource 定义了样本生产者的标准接口
// 多个生产者共享同一个发送通道，只有一个消费者
type DataSource interface {
	// DataStream 返回只读通道，消费者从中非阻塞地取出样本
	DataStream() <-chan Sample

	// Start 启动所有生产者，非阻塞
	Start()

	// Stop 表示消费者已离开
	// 生产者在下一次发送或休眠时发现并退出，返回时所有生产者均已结束
	Stop()
}
