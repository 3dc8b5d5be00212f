package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/downtime"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

type staticSource struct {
	snap *monitor.Snapshot
}

func (s staticSource) Snapshot() *monitor.Snapshot { return s.snap }

var at = time.Unix(1_700_000_000, 400_000_000)

func testSnapshot() *monitor.Snapshot {
	session := core.NewStats[uint32]()
	session.Update(10, true)
	session.Update(20, true)

	bars := []core.Stats[uint16]{core.NewStats[uint16](), core.NewStats[uint16]()}
	bars[1].Update(12, true)
	bars[1].Update(0, false)

	return &monitor.Snapshot{
		At:        at,
		GraphAt:   at,
		SessionID: "2023-11-14 22-13-20-000 +0000",
		Started:   at.Add(-time.Hour),
		Latest: monitor.Status{
			Destination: "8.8.8.8",
			Outcome:     core.Reachable(20 * time.Millisecond),
			Text:        "20 ms (10:20) 15.0",
		},
		Session:  session,
		Samples:  2,
		Bars:     bars,
		Min:      0,
		Max:      50,
		Interval: time.Second,
		Outages: []downtime.Interval{
			{Start: at.Add(-10 * time.Second).UnixNano(), End: at.Add(-7 * time.Second).UnixNano()},
		},
	}
}

func get(t *testing.T, s *Server, path string, out interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	s := New(":0", staticSource{}, nil, nil)
	assert.Equal(t, http.StatusOK, get(t, s, "/health", nil))
}

func TestNoSnapshot(t *testing.T) {
	s := New(":0", staticSource{}, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/status", nil))
}

func TestStatus(t *testing.T) {
	s := New(":0", staticSource{snap: testSnapshot()}, nil, nil)

	var resp StatusResponse
	require.Equal(t, http.StatusOK, get(t, s, "/api/status", &resp))
	assert.Equal(t, "20 ms (10:20) 15.0", resp.Status)
	assert.Equal(t, "8.8.8.8", resp.Destination)
	require.NotNil(t, resp.RTTMillis)
	assert.Equal(t, uint64(20), *resp.RTTMillis)
	assert.False(t, resp.Disconnected)
	assert.Nil(t, resp.DisconnectedSince)
	assert.Equal(t, uint32(2), resp.Stats.Count)
	require.NotNil(t, resp.Stats.Average)
	assert.Equal(t, 15.0, *resp.Stats.Average)
}

func TestStatusDisconnected(t *testing.T) {
	snap := testSnapshot()
	snap.Latest = monitor.Status{Outcome: core.Unreachable(), Text: "Disconnected", Disconnected: true}
	snap.Disconnected = true
	snap.DisconnectedSince = at.Add(-5 * time.Second)
	s := New(":0", staticSource{snap: snap}, nil, nil)

	var resp StatusResponse
	require.Equal(t, http.StatusOK, get(t, s, "/api/status", &resp))
	assert.Nil(t, resp.RTTMillis)
	assert.True(t, resp.Disconnected)
	require.NotNil(t, resp.DisconnectedSince)
	assert.True(t, snap.DisconnectedSince.Equal(*resp.DisconnectedSince))
}

func TestGraph(t *testing.T) {
	s := New(":0", staticSource{snap: testSnapshot()}, nil, nil)

	var resp GraphResponse
	require.Equal(t, http.StatusOK, get(t, s, "/api/graph", &resp))
	assert.Equal(t, int64(1000), resp.IntervalMillis)
	require.Len(t, resp.Bars, 2)

	// 空桶没有数值
	assert.Zero(t, resp.Bars[0].Count)
	assert.Nil(t, resp.Bars[0].Average)

	newest := resp.Bars[1]
	assert.Equal(t, uint16(1), newest.Count)
	assert.True(t, newest.Timeout)
	require.NotNil(t, newest.Average)
	assert.Equal(t, uint16(12), *newest.Average)
	assert.True(t, newest.End.Equal(time.Unix(1_700_000_001, 0)))
	assert.True(t, resp.Bars[0].End.Equal(newest.Start))
}

func TestGraphWindowsFollowGraphTime(t *testing.T) {
	// 快照在柱子重算之后又发布过一次，跨过了柱子边界
	snap := testSnapshot()
	snap.At = at.Add(700 * time.Millisecond)
	s := New(":0", staticSource{snap: snap}, nil, nil)

	var resp GraphResponse
	require.Equal(t, http.StatusOK, get(t, s, "/api/graph", &resp))
	require.Len(t, resp.Bars, 2)
	assert.True(t, resp.Bars[1].Start.Equal(time.Unix(1_700_000_000, 0)))
	assert.True(t, resp.Bars[1].End.Equal(time.Unix(1_700_000_001, 0)))
}

func TestOutages(t *testing.T) {
	s := New(":0", staticSource{snap: testSnapshot()}, nil, nil)

	var resp OutagesResponse
	require.Equal(t, http.StatusOK, get(t, s, "/api/outages", &resp))
	require.Len(t, resp.Outages, 1)
	assert.Equal(t, 3.0, resp.Outages[0].Seconds)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pingtrack_disconnected 0\n"))
	})
	s := New(":0", staticSource{}, metrics, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pingtrack_disconnected")

	// 未提供metrics时路由不存在
	s = New(":0", staticSource{}, nil, nil)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/metrics", nil))
}
