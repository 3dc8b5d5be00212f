// Package pinger - ICMP回显报文的构造与校验
package pinger

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// echoPayload 回显请求携带的数据
var echoPayload = []byte("pingtrack")

// echoIDCounter 为每个探测器分配不同的回显ID
var echoIDCounter atomic.Uint32

// errNoDeadline 探测调用没有设置超时
var errNoDeadline = errors.New("探测调用必须设置超时")

// nextEchoID 分配一个回显ID
func nextEchoID() int {
	return (os.Getpid() + int(echoIDCounter.Add(1))) & 0xffff
}

// echoTypes 返回请求/回复类型及协议号
func echoTypes(ipVersion int) (request, reply icmp.Type, proto int) {
	if ipVersion == 6 {
		return ipv6.ICMPTypeEchoRequest, ipv6.ICMPTypeEchoReply, 58
	}
	return ipv4.ICMPTypeEcho, ipv4.ICMPTypeEchoReply, 1
}

// marshalEcho 构造回显请求
func marshalEcho(ipVersion, id, seq int) ([]byte, error) {
	request, _, _ := echoTypes(ipVersion)
	msg := &icmp.Message{
		Type: request,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: echoPayload,
		},
	}
	return msg.Marshal(nil)
}

// matchEchoReply 检查收到的报文是否是对应的回显回复
// id小于0时不校验ID（DGRAM套接字的ID由内核改写）
func matchEchoReply(ipVersion int, data []byte, id, seq int) bool {
	_, reply, proto := echoTypes(ipVersion)
	msg, err := icmp.ParseMessage(proto, data)
	if err != nil {
		return false
	}
	if msg.Type != reply {
		return false
	}
	echo, ok := msg.Body.(*icmp.Echo)
	if !ok {
		return false
	}
	if id >= 0 && echo.ID != id {
		return false
	}
	return echo.Seq == seq
}

// probeDeadline 从ctx取出本次探测的截止时间
func probeDeadline(ctx context.Context) (time.Time, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return time.Time{}, errNoDeadline
	}
	return deadline, nil
}
