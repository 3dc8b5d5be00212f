package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Kevin-Rudy/pingtrack/pkg/applog"
	"github.com/Kevin-Rudy/pingtrack/pkg/metrics"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
	"github.com/Kevin-Rudy/pingtrack/pkg/notify"
	"github.com/Kevin-Rudy/pingtrack/pkg/pinger"
	"github.com/Kevin-Rudy/pingtrack/pkg/server"
	"github.com/Kevin-Rudy/pingtrack/pkg/sessionlog"
	"github.com/Kevin-Rudy/pingtrack/pkg/tui"
)

// runApp 主要应用逻辑处理函数
func runApp(c *cli.Context) error {
	// IP版本冲突检查
	if c.IsSet("4") && c.Bool("6") {
		return cli.Exit("错误: -4 和 -6 选项不能同时使用", 1)
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	var tuiCfg *tui.Config
	if !cfg.Headless {
		if tuiCfg, err = tuiConfig(c); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	// TUI模式下标准输出属于界面，日志只写文件和诊断面板
	backend, err := applog.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable, cfg.Headless)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer backend.Close()

	log := backend.GetLogger(applog.ModuleMain)
	for _, w := range cfg.Warnings {
		log.Warning(w.Error())
	}
	if cfg.Headless {
		showSystemInfo()
	}

	started := time.Now()

	pc := cfg.Pinger()
	pc.Log = backend.GetLogger(applog.ModulePinger)
	p, err := pinger.NewPinger(cfg.Targets(), pc)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建ping引擎: %v", err), 1)
	}

	writer := sessionlog.New(cfg.LogDir, started, backend.GetLogger(applog.ModuleSessionLog))
	mon := monitor.New(monitorConfig(cfg), p, writer, backend.GetLogger(applog.ModuleMonitor), started)
	impl := pinger.GetImplementationType()
	if cfg.Mode == pinger.ModeTCP {
		impl = fmt.Sprintf("TCP connect :%d", cfg.TCPPort)
	}
	log.Noticef("session %s, %d destinations, %s", writer.ID(), len(cfg.Destinations), impl)

	// 事件订阅必须在监控器运行之前完成
	met := metrics.New()
	met.Subscribe(&mon.Events)

	var notifier *notify.Notifier
	if cfg.Discord.Token != "" {
		notifier, err = notify.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID, backend.GetLogger(applog.ModuleNotify))
		if err != nil {
			log.Warningf("discord notifications disabled: %v", err)
		} else {
			notifier.Subscribe(&mon.Events)
		}
	}

	var ui *tui.TUI
	if !cfg.Headless {
		ui = tui.New(mon, destinationNames(cfg), writer.ID(), tuiCfg)
		ui.Subscribe(&mon.Events)
		backend.Attach(ui.Diagnostics())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	monErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		monErr <- mon.Run(ctx)
	}()

	if cfg.HTTP.Address != "" {
		srv := server.New(cfg.HTTP.Address, mon, met.Handler(), backend.GetLogger(applog.ModuleServer))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				log.Errorf("http server: %v", err)
				cancel()
			}
		}()
	}

	if ui != nil {
		// 用户退出界面即结束会话
		if err := ui.Run(ctx); err != nil {
			log.Errorf("TUI运行出错: %v", err)
		}
		cancel()
	} else {
		<-ctx.Done()
	}

	// 监控器退出前会写最后一次离线区间日志
	wg.Wait()
	if ui != nil {
		backend.Detach(ui.Diagnostics())
	}
	if notifier != nil {
		notifier.Close()
	}

	err = <-monErr
	if ui != nil {
		fmt.Printf("会话 %s 已结束，日志目录: %s\n", writer.ID(), logDirText(cfg.LogDir))
	}
	return err
}

func logDirText(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
