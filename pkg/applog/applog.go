// Package applog 提供基于go-logging的日志后端
// 一个后端，多个按模块命名的logger，输出可以同时扇出到TUI日志面板
package applog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/op/go-logging.v1"
)

// 各组件使用的模块名
const (
	ModuleMonitor    = "monitor"
	ModulePinger     = "pinger"
	ModuleSessionLog = "sessionlog"
	ModuleServer     = "server"
	ModuleNotify     = "notify"
	ModuleMain       = "pingtrack"
)

const logFormat = "%{time:15:04:05.000} %{level:.4s} %{module}: %{message}"

// Backend 日志后端
type Backend struct {
	file    *os.File
	out     *fanout
	backend logging.LeveledBackend
}

// GetLogger 返回写入该后端的模块logger
func (b *Backend) GetLogger(module string) *logging.Logger {
	l := logging.MustGetLogger(module)
	l.SetBackend(b.backend)
	return l
}

// New 初始化日志后端
// f为空时写标准输出；console为false时不写标准输出，只写附加的writer
func New(f string, level string, disable, console bool) (*Backend, error) {
	b := &Backend{out: &fanout{}}

	lvl, err := logLevelFromString(level)
	if err != nil {
		return nil, err
	}

	switch {
	case disable:
	case f != "":
		const fileMode = 0600

		flags := os.O_CREATE | os.O_APPEND | os.O_WRONLY
		b.file, err = os.OpenFile(f, flags, fileMode)
		if err != nil {
			return nil, fmt.Errorf("applog: failed to create log file: %v", err)
		}
		b.out.Attach(b.file)
	case console:
		b.out.Attach(os.Stdout)
	}

	logFmt := logging.MustStringFormatter(logFormat)
	base := logging.NewLogBackend(b.out, "", 0)
	formatted := logging.NewBackendFormatter(base, logFmt)
	b.backend = logging.AddModuleLevel(formatted)
	b.backend.SetLevel(lvl, "")
	return b, nil
}

// Attach 追加一个输出，例如TUI日志面板
func (b *Backend) Attach(w io.Writer) {
	b.out.Attach(w)
}

// Detach 移除之前追加的输出
func (b *Backend) Detach(w io.Writer) {
	b.out.Detach(w)
}

// SetLevel 调整某个模块的级别，module为空表示全部
func (b *Backend) SetLevel(level, module string) error {
	lvl, err := logLevelFromString(level)
	if err != nil {
		return err
	}
	b.backend.SetLevel(lvl, module)
	return nil
}

// Close 关闭日志文件
func (b *Backend) Close() error {
	if b.file == nil {
		return nil
	}
	b.out.Detach(b.file)
	return b.file.Close()
}

func logLevelFromString(l string) (logging.Level, error) {
	switch l {
	case "ERROR":
		return logging.ERROR, nil
	case "WARNING":
		return logging.WARNING, nil
	case "NOTICE":
		return logging.NOTICE, nil
	case "INFO":
		return logging.INFO, nil
	case "DEBUG":
		return logging.DEBUG, nil
	default:
		return logging.CRITICAL, fmt.Errorf("applog: invalid level: '%v'", l)
	}
}

// fanout 把每条日志写到所有已附加的writer
// 单个writer失败不影响其他writer；失败的writer被移除，并报告一次
type fanout struct {
	mu      sync.Mutex
	writers []io.Writer
	errOut  io.Writer // 没有其他writer可以报告时使用，nil为标准错误
}

func (f *fanout) Attach(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writers = append(f.writers, w)
}

func (f *fanout) Detach(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, x := range f.writers {
		if x == w {
			f.writers = append(f.writers[:i], f.writers[i+1:]...)
			return
		}
	}
}

func (f *fanout) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var failed []string
	kept := f.writers[:0]
	for _, w := range f.writers {
		if _, err := w.Write(p); err != nil {
			failed = append(failed, fmt.Sprintf("applog: output %T detached after write error: %v\n", w, err))
			continue
		}
		kept = append(kept, w)
	}
	f.writers = kept

	for _, msg := range failed {
		if len(f.writers) == 0 {
			out := f.errOut
			if out == nil {
				out = os.Stderr
			}
			io.WriteString(out, msg)
			continue
		}
		for _, w := range f.writers {
			io.WriteString(w, msg)
		}
	}
	return len(p), nil
}
