package sessionlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/downtime"
)

// ErrMalformedLine 日志行无法解析
var ErrMalformedLine = errors.New("sessionlog: malformed line")

const separator = ", "

func malformed(line, reason string) error {
	return fmt.Errorf("%w: %s: %q", ErrMalformedLine, reason, line)
}

func parseTime(field string) (int64, error) {
	t, err := time.Parse(TimestampLayout, field)
	if err != nil {
		return 0, err
	}
	return t.UnixNano(), nil
}

// ParseSampleLine 解析原始样本日志中的一行，行尾的\r\n可有可无
func ParseSampleLine(line string) (core.Sample, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.SplitN(line, separator, 3)
	if len(fields) != 3 {
		return core.Sample{}, malformed(line, "expected 3 fields")
	}

	ts, err := parseTime(fields[0])
	if err != nil {
		return core.Sample{}, malformed(line, "bad timestamp")
	}

	outcome := core.Unreachable()
	if fields[1] != core.TimeoutText {
		ms, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return core.Sample{}, malformed(line, "bad outcome")
		}
		outcome = core.Reachable(time.Duration(ms) * time.Millisecond)
	}

	if fields[2] == "" {
		return core.Sample{}, malformed(line, "empty destination")
	}

	return core.Sample{Destination: fields[2], Timestamp: ts, Outcome: outcome}, nil
}

// ParseIntervalLine 解析离线区间日志中的一行
func ParseIntervalLine(line string) (downtime.Interval, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, separator)
	if len(fields) != 3 {
		return downtime.Interval{}, malformed(line, "expected 3 fields")
	}

	start, err := parseTime(fields[0])
	if err != nil {
		return downtime.Interval{}, malformed(line, "bad start")
	}
	end, err := parseTime(fields[1])
	if err != nil {
		return downtime.Interval{}, malformed(line, "bad end")
	}
	if _, err := strconv.ParseFloat(fields[2], 64); err != nil {
		return downtime.Interval{}, malformed(line, "bad duration")
	}

	return downtime.Interval{Start: start, End: end}, nil
}

// ReadSamples 读取整个原始样本日志
func ReadSamples(r io.Reader) ([]core.Sample, error) {
	var samples []core.Sample
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		s, err := ParseSampleLine(sc.Text())
		if err != nil {
			return samples, err
		}
		samples = append(samples, s)
	}
	return samples, sc.Err()
}
