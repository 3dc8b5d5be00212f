// Package metrics 把监控事件转换为prometheus指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
	"github.com/Kevin-Rudy/pingtrack/pkg/history"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

const namespace = "pingtrack"

// Metrics 一组指标，使用独立的registry
type Metrics struct {
	registry *prometheus.Registry

	samples        *prometheus.CounterVec
	rtt            *prometheus.HistogramVec
	disconnected   prometheus.Gauge
	outages        prometheus.Counter
	historySamples prometheus.Gauge
	logWriteErrors *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_total",
				Help:      "Number of probe samples by destination and outcome",
			},
			[]string{"destination", "outcome"},
		),
		rtt: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rtt_milliseconds",
				Help:      "Round trip time of reachable samples",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 50, 75, 100, 150, 250, 500, 1000},
			},
			[]string{"destination"},
		),
		disconnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "disconnected",
				Help:      "1 while the latest sample is a timeout",
			},
		),
		outages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outages_total",
				Help:      "Number of outages that lasted longer than the debounce time",
			},
		),
		historySamples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_samples",
				Help:      "Number of samples held in memory",
			},
		),
		logWriteErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_write_errors_total",
				Help:      "Number of failed session log writes",
			},
			[]string{"log"},
		),
	}

	m.registry.MustRegister(
		m.samples,
		m.rtt,
		m.disconnected,
		m.outages,
		m.historySamples,
		m.logWriteErrors,
	)
	return m
}

// Subscribe 注册到监控器事件，必须在Run之前调用
func (m *Metrics) Subscribe(events *monitor.Events) {
	events.Sample.Subscribe(m.observeSample)
	events.Status.Subscribe(func(s monitor.Status) {
		if s.Disconnected {
			m.disconnected.Set(1)
		} else {
			m.disconnected.Set(0)
		}
	})
	events.Outage.Subscribe(func(o monitor.Outage) {
		if o.Transition == history.OutageConfirmed {
			m.outages.Inc()
		}
	})
	events.Graph.Subscribe(func(g monitor.GraphUpdate) {
		m.SetHistorySize(g.Samples)
	})
	events.Save.Subscribe(func(r monitor.SaveResult) {
		if r.Err != nil {
			m.logWriteErrors.WithLabelValues(string(r.Kind)).Inc()
		}
	})
}

func (m *Metrics) observeSample(s core.Sample) {
	rtt, ok := s.Outcome.RTT()
	if !ok {
		m.samples.WithLabelValues(s.Destination, core.TimeoutText).Inc()
		return
	}
	m.samples.WithLabelValues(s.Destination, "reply").Inc()
	m.rtt.WithLabelValues(s.Destination).Observe(float64(rtt) / 1e6)
}

// SetHistorySize 更新内存中的样本数量
func (m *Metrics) SetHistorySize(n int) {
	m.historySamples.Set(float64(n))
}

// Registry 返回底层registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回/metrics的HTTP处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
