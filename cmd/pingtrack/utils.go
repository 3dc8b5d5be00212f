package main

import (
	"fmt"

	"github.com/Kevin-Rudy/pingtrack/pkg/pinger"
)

// 程序信息常量
const (
	AppName    = "pingtrack"
	AppVersion = "0.2.0"
	AppDesc    = "持续监控网络延迟并记录断线区间"
)

// showSystemInfo 显示系统环境信息
func showSystemInfo() {
	fmt.Println("系统信息:")
	fmt.Printf("  操作系统: %s\n", pinger.GetOSName())
	fmt.Printf("  权限状态: %s\n", pinger.GetPrivilegeStatus())
	fmt.Printf("  实现方式: %s\n", pinger.GetImplementationType())
}
