// Package sessionlog 写出每个会话的两个日志文件
// 原始样本日志和离线区间日志，文件名都带有会话标识
package sessionlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/op/go-logging.v1"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/downtime"
)

// TimestampLayout 日志中时间戳的格式，本地时区，纳秒精度
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// 文件名后缀
const (
	samplesSuffix  = " samples.log"
	timeoutsSuffix = " timeouts.log"
)

const lineEnd = "\r\n"

// Identifier 由会话开始时间生成的标识，例如 "2024-03-01 12-00-00-123 +0800"
func Identifier(start time.Time) string {
	return fmt.Sprintf("%s-%03d %s",
		start.Format("2006-01-02 15-04-05"),
		start.Nanosecond()/int(time.Millisecond),
		start.Format("-0700"))
}

// Writer 会话日志写入器，整个进程生命周期内标识不变
type Writer struct {
	dir string
	id  string
	log *logging.Logger
}

// New 创建写入器，dir为空时写入当前目录
func New(dir string, start time.Time, log *logging.Logger) *Writer {
	if log == nil {
		log = logging.MustGetLogger("sessionlog")
	}
	return &Writer{dir: dir, id: Identifier(start), log: log}
}

// ID 会话标识
func (w *Writer) ID() string {
	return w.id
}

// SamplesPath 原始样本日志路径
func (w *Writer) SamplesPath() string {
	return filepath.Join(w.dir, w.id+samplesSuffix)
}

// TimeoutsPath 离线区间日志路径
func (w *Writer) TimeoutsPath() string {
	return filepath.Join(w.dir, w.id+timeoutsSuffix)
}

// WriteSamples 重写原始样本日志，samples必须已按时间升序
func (w *Writer) WriteSamples(samples []core.Sample) error {
	path := w.SamplesPath()
	err := writeLines(path, len(samples), func(i int) string {
		return FormatSample(samples[i])
	})
	if err != nil {
		return err
	}
	w.log.Debugf("wrote %d samples to '%s'", len(samples), path)
	return nil
}

// WriteDowntime 重写离线区间日志
func (w *Writer) WriteDowntime(intervals []downtime.Interval) error {
	path := w.TimeoutsPath()
	err := writeLines(path, len(intervals), func(i int) string {
		return FormatInterval(intervals[i])
	})
	if err != nil {
		return err
	}
	w.log.Debugf("wrote %d intervals to '%s'", len(intervals), path)
	return nil
}

// writeLines 创建或截断文件，写入后刷新并同步到磁盘
func writeLines(path string, n int, line func(int) string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create '%s': %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close '%s': %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		if _, err := bw.WriteString(line(i)); err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync '%s': %w", path, err)
	}
	return nil
}

// FormatTime 把纳秒时间戳格式化为本地时区的ISO时间
func FormatTime(ts int64) string {
	return time.Unix(0, ts).Format(TimestampLayout)
}

// FormatSample 原始样本日志中的一行
func FormatSample(s core.Sample) string {
	return FormatTime(s.Timestamp) + ", " + s.Outcome.String() + ", " + s.Destination + lineEnd
}

// FormatInterval 离线区间日志中的一行
func FormatInterval(iv downtime.Interval) string {
	return FormatTime(iv.Start) + ", " + FormatTime(iv.End) + ", " +
		strconv.FormatFloat(iv.Seconds(), 'f', 3, 64) + lineEnd
}
