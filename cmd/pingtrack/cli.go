package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Kevin-Rudy/pingtrack/pkg/pinger"
)

// createCliApp 创建CLI应用实例
func createCliApp() *cli.App {
	app := &cli.App{
		Name:      AppName,
		Version:   AppVersion,
		Usage:     AppDesc,
		Flags:     createCliFlags(),
		Action:    runApp,
		ArgsUsage: "[目标主机...]",
	}

	// 添加版本子命令
	app.Commands = createCommands()

	return app
}

// createCliFlags 创建CLI参数定义
// 只有显式设置的参数才覆盖配置文件和环境变量
func createCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "TOML配置文件路径",
		},
		&cli.StringSliceFlag{
			Name:  "env-file",
			Value: cli.NewStringSlice(".env"),
			Usage: "读取的.env文件，不存在时忽略",
		},
		&cli.BoolFlag{
			Name:  "4",
			Usage: "使用IPv4进行域名解析（默认）",
		},
		&cli.BoolFlag{
			Name:  "6",
			Usage: "使用IPv6进行域名解析",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "探测方式: icmp 或 tcp",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "tcp模式下连接的端口",
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"n"},
			Usage:   "未单独指定间隔的目标的探测间隔，包括默认目标 (例如: 500ms, 1s)",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "单次探测超时时间 (例如: 2s, 1000ms)",
		},
		&cli.IntFlag{
			Name:  "bars",
			Usage: "柱状图的柱子数量",
		},
		&cli.DurationFlag{
			Name:  "bar-interval",
			Usage: "每根柱子的时间宽度",
		},
		&cli.UintFlag{
			Name:  "min",
			Usage: "显示范围下限 (ms)",
		},
		&cli.UintFlag{
			Name:  "max",
			Usage: "显示范围上限 (ms)",
		},
		&cli.DurationFlag{
			Name:  "autosave",
			Usage: "离线区间日志的自动保存周期",
		},
		&cli.DurationFlag{
			Name:  "retention",
			Usage: "内存中保留样本的时长，0表示全部保留",
		},
		&cli.StringFlag{
			Name:  "log-dir",
			Usage: "样本日志和离线区间日志的目录",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "日志级别: ERROR, WARNING, NOTICE, INFO, DEBUG",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "诊断日志文件",
		},
		&cli.StringFlag{
			Name:  "http",
			Usage: "状态接口监听地址 (例如: 127.0.0.1:9100)",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "不启动TUI，运行到收到SIGINT或SIGTERM",
		},
		&cli.DurationFlag{
			Name:    "refresh-rate",
			Aliases: []string{"r"},
			Value:   200 * time.Millisecond,
			Usage:   "UI刷新频率 (例如: 100ms, 500ms)",
		},
	}
}

// createCommands 创建子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "显示详细版本信息",
			Action: func(c *cli.Context) error {
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				fmt.Printf("描述: %s\n", AppDesc)
				fmt.Printf("系统: %s\n", pinger.GetOSName())
				fmt.Printf("实现: %s\n", pinger.GetImplementationType())
				return nil
			},
		},
	}
}
