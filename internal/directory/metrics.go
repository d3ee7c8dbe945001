package directory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 目录服务的 Prometheus 指标
//
// reg 为 nil 时指标不注册，仅在内存中计数（测试常用）。
type Metrics struct {
	Registrations   prometheus.Counter
	Unregistrations *prometheus.CounterVec // outcome: migrated / deleted / empty
	Lookups         *prometheus.CounterVec // result: found / not_found
	Rejections      *prometheus.CounterVec // op, reason
	Nodes           prometheus.Gauge
	Topics          prometheus.Gauge
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "directory",
			Name:      "registrations_total",
			Help:      "Number of successful register calls.",
		}),
		Unregistrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "directory",
			Name:      "unregistrations_total",
			Help:      "Number of successful unregister calls by migration outcome.",
		}, []string{"outcome"}),
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "directory",
			Name:      "lookups_total",
			Help:      "Number of topic lookups by result.",
		}, []string{"result"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "directory",
			Name:      "rejections_total",
			Help:      "Number of rejected directory mutations.",
		}, []string{"op", "reason"}),
		Nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "topicmesh",
			Subsystem: "directory",
			Name:      "nodes",
			Help:      "Number of registered nodes.",
		}),
		Topics: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "topicmesh",
			Subsystem: "directory",
			Name:      "topics",
			Help:      "Number of hosted topics.",
		}),
	}
}
