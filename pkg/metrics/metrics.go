// Package metrics holds the prometheus collectors exposed on the private listener.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "murverse"

// HTTP request collectors
// HTTP 请求指标
type HTTP struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTP 创建并注册 HTTP 指标；reg 为 nil 时使用默认注册表
func NewHTTP(reg prometheus.Registerer) *HTTP {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests being served.",
		}),
	}
	reg.MustRegister(m.Requests, m.Latency, m.InFlight)
	return m
}

// Observe 记录一次请求
func (m *HTTP) Observe(method, route, status string, d time.Duration) {
	m.Requests.WithLabelValues(method, route, status).Inc()
	m.Latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Domain counters for fragment writes and backups
// 业务指标
type Domain struct {
	FragmentEvents *prometheus.CounterVec
	BackupsRemoved prometheus.Counter
	WriteQueue     *prometheus.GaugeVec
}

// NewDomain 创建并注册业务指标
func NewDomain(reg prometheus.Registerer) *Domain {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Domain{
		FragmentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragment_events_total",
			Help:      "Fragment change events by type.",
		}, []string{"type"}),
		BackupsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_removed_total",
			Help:      "Expired backups deleted by cleanup.",
		}),
		WriteQueue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "write_queue",
			Help:      "Write queue state (active_queues, executed, rejected).",
		}, []string{"field"}),
	}
	reg.MustRegister(m.FragmentEvents, m.BackupsRemoved, m.WriteQueue)
	return m
}
