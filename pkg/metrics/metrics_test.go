package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/history"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

func TestSubscribe(t *testing.T) {
	m := New()
	var events monitor.Events
	m.Subscribe(&events)

	now := time.Now()
	events.Sample.Publish(core.NewSample("8.8.8.8", now, core.Reachable(12*time.Millisecond)))
	events.Sample.Publish(core.NewSample("8.8.8.8", now, core.Unreachable()))
	events.Sample.Publish(core.NewSample("9.9.9.9", now, core.Reachable(3*time.Millisecond)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.samples.WithLabelValues("8.8.8.8", "reply")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.samples.WithLabelValues("8.8.8.8", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.samples.WithLabelValues("9.9.9.9", "reply")))

	events.Status.Publish(monitor.Status{Disconnected: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.disconnected))
	events.Status.Publish(monitor.Status{})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.disconnected))

	events.Outage.Publish(monitor.Outage{Transition: history.OutageStarted})
	events.Outage.Publish(monitor.Outage{Transition: history.OutageConfirmed})
	events.Outage.Publish(monitor.Outage{Transition: history.Recovered})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outages))

	events.Graph.Publish(monitor.GraphUpdate{Samples: 42})
	assert.Equal(t, 42.0, testutil.ToFloat64(m.historySamples))

	events.Save.Publish(monitor.SaveResult{Kind: monitor.SaveDowntime})
	events.Save.Publish(monitor.SaveResult{Kind: monitor.SaveDowntime, Err: errors.New("disk full")})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logWriteErrors.WithLabelValues("timeouts")))
}

func TestHandler(t *testing.T) {
	m := New()
	var events monitor.Events
	m.Subscribe(&events)
	events.Sample.Publish(core.NewSample("1.1.1.2", time.Now(), core.Reachable(7*time.Millisecond)))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `pingtrack_samples_total{destination="1.1.1.2",outcome="reply"} 1`), text)
	assert.Contains(t, text, `pingtrack_rtt_milliseconds_bucket{destination="1.1.1.2",le="10"} 1`)
}
