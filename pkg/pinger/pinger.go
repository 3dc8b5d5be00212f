// Package pinger 实现了core.DataSource接口，为每个目标运行一个探测生产者
// 根据操作系统和用户权限自动选择最合适的底层实现
package pinger

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"gopkg.in/op/go-logging.v1"
)

// ErrNoTargets 未指定任何目标
var ErrNoTargets = errors.New("必须指定至少一个目标")

// proberFactory 为单个目标创建探测器
type proberFactory func(target string, config *Config) (core.Prober, error)

// producer 一个目标对应一个生产者
type producer struct {
	prober   core.Prober
	interval time.Duration
}

// Pinger 持有全部生产者，所有生产者共享同一个发送通道
type Pinger struct {
	producers []producer
	config    *Config
	log       *logging.Logger
	dataChan  chan core.Sample // 数据输出通道
	stopChan  chan struct{}    // 消费者离开信号
	wg        sync.WaitGroup   // 等待组，用于优雅关闭
	running   bool             // 运行状态
	stopped   bool
	runningMu sync.Mutex // 保护运行状态的锁
}

// NewPinger 创建新的Pinger实例
func NewPinger(targets []Target, config *Config) (*Pinger, error) {
	if config.Mode == ModeTCP {
		return newPingerWithFactory(targets, config, newTCPProber)
	}

	// 获取当前平台的能力实现
	platform := getPlatformCapability()

	// 优先尝试特权模式（所有平台统一用raw socket）
	if platform.hasPrivilegedAccess() {
		return newPingerWithFactory(targets, config, platform.newPrivilegedProber)
	}

	// 降级到非特权模式（各平台不同的实现）
	return newPingerWithFactory(targets, config, platform.newUnprivilegedProber)
}

func newPingerWithFactory(targets []Target, config *Config, factory proberFactory) (*Pinger, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 验证目标地址
	if err := config.ValidateTargets(targets); err != nil {
		return nil, err
	}

	p := &Pinger{
		config:   config,
		log:      config.logger(),
		dataChan: make(chan core.Sample, config.BufferSize),
		stopChan: make(chan struct{}),
	}

	for _, target := range targets {
		prober, err := factory(target.Address, config)
		if err != nil {
			p.closeProbers()
			return nil, fmt.Errorf("为 '%s' 创建探测器失败: %w", target.Address, err)
		}
		p.producers = append(p.producers, producer{
			prober:   prober,
			interval: config.intervalFor(target),
		})
	}

	return p, nil
}

// DataStream 实现core.DataSource接口
func (p *Pinger) DataStream() <-chan core.Sample {
	return p.dataChan
}

// Targets 返回按配置顺序排列的目标地址
func (p *Pinger) Targets() []string {
	targets := make([]string, len(p.producers))
	for i, pr := range p.producers {
		targets[i] = pr.prober.Target()
	}
	return targets
}

// Start 实现core.DataSource接口
func (p *Pinger) Start() {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	if p.running || p.stopped {
		return
	}
	p.running = true

	for _, pr := range p.producers {
		p.wg.Add(1)
		go p.run(pr)
	}
}

// Stop 实现core.DataSource接口
// 阻塞中的发送和休眠都会被唤醒，因此所有生产者在一个周期内退出
func (p *Pinger) Stop() {
	p.runningMu.Lock()
	if p.stopped {
		p.runningMu.Unlock()
		return
	}
	p.stopped = true
	p.running = false
	p.runningMu.Unlock()

	// 发送停止信号
	close(p.stopChan)

	// 等待所有goroutine结束
	p.wg.Wait()

	// 关闭数据通道
	close(p.dataChan)
	p.closeProbers()
}

func (p *Pinger) closeProbers() {
	for _, pr := range p.producers {
		if err := pr.prober.Close(); err != nil {
			p.log.Debugf("关闭 %s 的探测器失败: %v", pr.prober.Target(), err)
		}
	}
}

// run 生产者循环：记录时间、探测、发送、休眠
func (p *Pinger) run(pr producer) {
	defer p.wg.Done()

	target := pr.prober.Target()
	timer := time.NewTimer(pr.interval)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		sample := p.probeOnce(pr.prober, target)

		// 通道满时阻塞，直到消费者取走或离开
		select {
		case p.dataChan <- sample:
		case <-p.stopChan:
			return
		}

		timer.Reset(pr.interval)
		select {
		case <-timer.C:
		case <-p.stopChan:
			timer.Stop()
			return
		}
	}
}

// probeOnce 执行一次探测，任何错误都记为不可达
func (p *Pinger) probeOnce(prober core.Prober, target string) core.Sample {
	sentAt := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	rtt, err := prober.Probe(ctx)
	if err != nil {
		p.log.Debugf("%s: %v", target, err)
		return core.NewSample(target, sentAt, core.Unreachable())
	}
	return core.NewSample(target, sentAt, core.Reachable(rtt))
}

// GetSystemInfo 获取完整的系统信息
// 返回操作系统名称、权限状态和实现类型
func GetSystemInfo() (osName, privilegeStatus, implementationType string) {
	// 获取操作系统名称
	switch runtime.GOOS {
	case "windows":
		osName = "Windows"
	case "linux":
		osName = "Linux"
	case "darwin":
		osName = "macOS"
	default:
		osName = runtime.GOOS
	}

	// 获取当前平台能力并检查权限状态
	platform := getPlatformCapability()
	hasPriv := platform.hasPrivilegedAccess()

	switch runtime.GOOS {
	case "windows":
		if hasPriv {
			privilegeStatus = "管理员模式 (Raw Socket)"
			implementationType = "Raw Socket"
		} else {
			privilegeStatus = "普通用户模式 (Windows API)"
			implementationType = "Windows ICMP API"
		}
	case "linux":
		if hasPriv {
			privilegeStatus = "特权模式 (Raw Socket)"
			implementationType = "Linux Raw Socket"
		} else {
			privilegeStatus = "非特权模式 (DGRAM Socket)"
			implementationType = "Linux DGRAM Socket"
		}
	case "darwin":
		if hasPriv {
			privilegeStatus = "特权模式 (Root权限)"
			implementationType = "macOS Raw Socket"
		} else {
			privilegeStatus = "非特权模式 (UDP ICMP)"
			implementationType = "macOS UDP ICMP Socket"
		}
	default:
		if hasPriv {
			privilegeStatus = "特权模式"
			implementationType = "通用Raw Socket"
		} else {
			privilegeStatus = "权限不足"
			implementationType = "通用Raw Socket (需要提权)"
		}
	}

	return
}

// GetOSName 获取操作系统名称
func GetOSName() string {
	osName, _, _ := GetSystemInfo()
	return osName
}

// GetPrivilegeStatus 获取权限状态描述
func GetPrivilegeStatus() string {
	_, privilegeStatus, _ := GetSystemInfo()
	return privilegeStatus
}

// GetImplementationType 获取ping实现类型描述
func GetImplementationType() string {
	_, _, implementationType := GetSystemInfo()
	return implementationType
}

// HasPrivilegedAccess 检查是否有特权访问能力
func HasPrivilegedAccess() bool {
	platform := getPlatformCapability()
	return platform.hasPrivilegedAccess()
}
