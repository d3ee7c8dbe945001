package peer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 节点的 Prometheus 指标
//
// reg 为 nil 时指标不注册。
type Metrics struct {
	Published     prometheus.Counter
	Pulled        prometheus.Counter     // 被拉取的消息条数
	Subscriptions *prometheus.CounterVec // route: local / forwarded / error
	Registrations *prometheus.CounterVec // result: ok / error
	Topics        prometheus.Gauge
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "peer",
			Name:      "messages_published_total",
			Help:      "Number of messages published to locally hosted topics.",
		}),
		Pulled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "peer",
			Name:      "messages_pulled_total",
			Help:      "Number of messages drained by pull requests.",
		}),
		Subscriptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "peer",
			Name:      "subscriptions_total",
			Help:      "Number of subscribe requests by route.",
		}, []string{"route"}),
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicmesh",
			Subsystem: "peer",
			Name:      "registrations_total",
			Help:      "Number of register calls to the directory by result.",
		}, []string{"result"}),
		Topics: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "topicmesh",
			Subsystem: "peer",
			Name:      "topics",
			Help:      "Number of locally hosted topics.",
		}),
	}
}
