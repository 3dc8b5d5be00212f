//go:build windows

// Package pinger - Windows非特权模式实现
// 使用Icmp.dll系统调用，适用于Windows系统
package pinger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
	"unsafe"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"golang.org/x/sys/windows"
)

var (
	// 加载Icmp.dll库
	icmpDLL = windows.NewLazyDLL("Icmp.dll")

	// 获取函数地址
	icmpCreateFile  = icmpDLL.NewProc("IcmpCreateFile")
	icmpCloseHandle = icmpDLL.NewProc("IcmpCloseHandle")
	icmpSendEcho    = icmpDLL.NewProc("IcmpSendEcho")
)

// ICMP_ECHO_REPLY Windows ICMP回复结构体
type ICMP_ECHO_REPLY struct {
	Address       uint32
	Status        uint32
	RoundTripTime uint32
	DataSize      uint16
	Reserved      uint16
	Data          uintptr
	Options       ICMP_OPTIONS
}

// ICMP_OPTIONS Windows ICMP选项结构体
type ICMP_OPTIONS struct {
	Ttl         uint8
	Tos         uint8
	Flags       uint8
	OptionsSize uint8
	OptionsData uintptr
}

// errEchoFailed IcmpSendEcho返回失败或非成功状态
var errEchoFailed = errors.New("IcmpSendEcho未收到成功回复")

// windowsProber Windows非特权模式的探测器
type windowsProber struct {
	target     string
	destAddr   uint32
	icmpHandle syscall.Handle // ICMP句柄
	reply      []byte
}

// newWindowsProber 创建Windows非特权模式的探测器实例
func newWindowsProber(target string, config *Config) (core.Prober, error) {
	if config.IPVersion == 6 {
		return nil, errors.New("Windows API模式暂不支持IPv6，请以管理员身份运行")
	}

	dst, err := net.ResolveIPAddr("ip4", target)
	if err != nil {
		return nil, fmt.Errorf("解析 '%s' 失败: %w", target, err)
	}

	// 创建ICMP句柄
	ret, _, err := icmpCreateFile.Call()
	if ret == 0 || ret == uintptr(syscall.InvalidHandle) {
		return nil, err
	}

	// 将IP地址转换为32位整数（网络字节序）
	ip := dst.IP.To4()
	destAddr := uint32(ip[0]) | (uint32(ip[1]) << 8) | (uint32(ip[2]) << 16) | (uint32(ip[3]) << 24)

	// 需要足够大的缓冲区来存储ICMP_ECHO_REPLY结构和数据
	replySize := unsafe.Sizeof(ICMP_ECHO_REPLY{}) + uintptr(len(echoPayload)) + 8

	return &windowsProber{
		target:     target,
		destAddr:   destAddr,
		icmpHandle: syscall.Handle(ret),
		reply:      make([]byte, replySize),
	}, nil
}

// Target 实现core.Prober接口
func (p *windowsProber) Target() string {
	return p.target
}

// Probe 发送单个ping包，IcmpSendEcho自身以超时阻塞
func (p *windowsProber) Probe(ctx context.Context) (time.Duration, error) {
	deadline, err := probeDeadline(ctx)
	if err != nil {
		return 0, err
	}
	timeoutMs := uint32(time.Until(deadline).Milliseconds())
	if timeoutMs == 0 {
		return 0, context.DeadlineExceeded
	}

	sendTime := time.Now()

	ret, _, _ := icmpSendEcho.Call(
		uintptr(p.icmpHandle),                    // ICMP句柄
		uintptr(p.destAddr),                      // 目标IP地址
		uintptr(unsafe.Pointer(&echoPayload[0])), // 发送数据
		uintptr(len(echoPayload)),                // 发送数据长度
		0,                                        // ICMP选项（NULL）
		uintptr(unsafe.Pointer(&p.reply[0])),     // 接收缓冲区
		uintptr(len(p.reply)),                    // 接收缓冲区大小
		uintptr(timeoutMs),                       // 超时时间（毫秒）
	)

	receiveTime := time.Now()

	if ret == 0 {
		return 0, errEchoFailed
	}

	reply := (*ICMP_ECHO_REPLY)(unsafe.Pointer(&p.reply[0]))
	if reply.Status != 0 { // IP_SUCCESS
		return 0, fmt.Errorf("%w: status %d", errEchoFailed, reply.Status)
	}

	// 优先使用Windows API返回的往返时间
	if reply.RoundTripTime > 0 {
		return time.Duration(reply.RoundTripTime) * time.Millisecond, nil
	}
	return receiveTime.Sub(sendTime), nil
}

// Close 关闭ICMP句柄
func (p *windowsProber) Close() error {
	if p.icmpHandle != syscall.InvalidHandle {
		icmpCloseHandle.Call(uintptr(p.icmpHandle))
		p.icmpHandle = syscall.InvalidHandle
	}
	return nil
}

// checkWindowsAdmin 检查是否具有Windows管理员权限
func checkWindowsAdmin() bool {
	var sid *windows.SID

	// 获取管理员组的SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	// 检查当前进程token是否是管理员组成员
	isMember, err := windows.Token(0).IsMember(sid)
	if err != nil {
		return false
	}

	return isMember
}
