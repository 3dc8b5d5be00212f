package sessionlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/downtime"
)

var zone = time.FixedZone("test", 8*3600)

func TestIdentifier(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 5, 7, 42_500_000, zone)
	assert.Equal(t, "2024-03-01 09-05-07-042 +0800", Identifier(start))

	w := New("logs", start, nil)
	assert.Equal(t, filepath.Join("logs", "2024-03-01 09-05-07-042 +0800 samples.log"), w.SamplesPath())
	assert.Equal(t, filepath.Join("logs", "2024-03-01 09-05-07-042 +0800 timeouts.log"), w.TimeoutsPath())
}

func TestFormatSample(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 5, 7, 123456789, zone)
	line := FormatSample(core.NewSample("8.8.8.8", ts, core.Reachable(15900*time.Microsecond)))
	assert.Equal(t, ts.Local().Format(TimestampLayout)+", 15, 8.8.8.8\r\n", line)

	line = FormatSample(core.NewSample("9.9.9.9", ts, core.Unreachable()))
	assert.True(t, strings.HasSuffix(line, ", timeout, 9.9.9.9\r\n"))
}

func TestFormatInterval(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, zone)
	iv := downtime.Interval{Start: start.UnixNano(), End: start.Add(2500 * time.Millisecond).UnixNano()}
	line := FormatInterval(iv)
	assert.True(t, strings.HasSuffix(line, ", 2.500\r\n"), line)

	parsed, err := ParseIntervalLine(line)
	require.NoError(t, err)
	assert.Equal(t, iv, parsed)
}

func TestSampleRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 5, 7, 123456789, zone)
	samples := []core.Sample{
		core.NewSample("1.1.1.2", ts, core.Reachable(12*time.Millisecond)),
		core.NewSample("2001:4860:4860::8888", ts.Add(time.Second), core.Unreachable()),
		core.NewSample("example.com", ts.Add(2*time.Second), core.Reachable(0)),
	}

	for _, s := range samples {
		got, err := ParseSampleLine(FormatSample(s))
		require.NoError(t, err)
		assert.Equal(t, s.Destination, got.Destination)
		assert.Equal(t, s.Timestamp, got.Timestamp)
		assert.Equal(t, s.Outcome.IsReachable(), got.Outcome.IsReachable())
		wantMs, _ := s.Outcome.Millis()
		gotMs, _ := got.Outcome.Millis()
		assert.Equal(t, wantMs, gotMs)
	}
}

func TestParseSampleLineMalformed(t *testing.T) {
	for _, line := range []string{
		"",
		"garbage",
		"2024-03-01T09:05:07.000000000+08:00, 12",
		"yesterday, 12, 8.8.8.8",
		"2024-03-01T09:05:07.000000000+08:00, fast, 8.8.8.8",
		"2024-03-01T09:05:07.000000000+08:00, -3, 8.8.8.8",
		"2024-03-01T09:05:07.000000000+08:00, 12, ",
	} {
		_, err := ParseSampleLine(line)
		assert.True(t, errors.Is(err, ErrMalformedLine), "line %q: %v", line, err)
	}
}

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, zone)
	w := New(dir, start, nil)

	samples := []core.Sample{
		core.NewSample("8.8.8.8", start, core.Reachable(10*time.Millisecond)),
		core.NewSample("8.8.8.8", start.Add(time.Second), core.Unreachable()),
		core.NewSample("8.8.8.8", start.Add(2*time.Second), core.Unreachable()),
		core.NewSample("8.8.8.8", start.Add(3*time.Second), core.Reachable(12*time.Millisecond)),
	}
	require.NoError(t, w.WriteSamples(samples))

	f, err := os.Open(w.SamplesPath())
	require.NoError(t, err)
	defer f.Close()
	got, err := ReadSamples(f)
	require.NoError(t, err)
	require.Len(t, got, len(samples))
	for i := range samples {
		assert.Equal(t, samples[i].Timestamp, got[i].Timestamp)
		assert.Equal(t, samples[i].Outcome.IsReachable(), got[i].Outcome.IsReachable())
	}

	intervals, _ := downtime.Extract(samples)
	require.NoError(t, w.WriteDowntime(intervals))
	raw, err := os.ReadFile(w.TimeoutsPath())
	require.NoError(t, err)
	assert.Equal(t, FormatInterval(intervals[0]), string(raw))

	// 重写会截断旧内容
	require.NoError(t, w.WriteDowntime(nil))
	raw, err = os.ReadFile(w.TimeoutsPath())
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestWriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w := New(dir, time.Now(), nil)
	require.NoError(t, w.WriteDowntime(nil))
	_, err := os.Stat(w.TimeoutsPath())
	assert.NoError(t, err)
}

func TestWriteFailure(t *testing.T) {
	// 目标路径被一个普通文件占用，无法创建目录
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	w := New(filepath.Join(blocker, "logs"), time.Now(), nil)
	assert.Error(t, w.WriteSamples(nil))
	assert.Error(t, w.WriteDowntime(nil))
}
