// Package metrics exposes Prometheus counters for the chore engine. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "choreboard"

type Metrics struct {
	registry      *prometheus.Registry
	completions   *prometheus.CounterVec
	coinsAwarded  prometheus.Counter
	rejected      *prometheus.CounterVec
	cancellations prometheus.Counter
	redemptions   prometheus.Counter
	houseHealth   prometheus.Gauge
	notifications *prometheus.CounterVec
}

// New builds a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Task completions recorded, by assignment mode.",
		}, []string{"mode"}),
		coinsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_awarded_total",
			Help:      "Coins credited for completions.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_rejected_total",
			Help:      "Completion attempts refused, by reason.",
		}, []string{"reason"}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_cancelled_total",
			Help:      "Completions cancelled by an admin.",
		}),
		redemptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_redemptions_total",
			Help:      "Reward redemptions requested.",
		}),
		houseHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "house_health",
			Help:      "Effort-weighted health of the whole house, 0-100.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries, by channel and result.",
		}, []string{"channel", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.completions, m.coinsAwarded, m.rejected, m.cancellations,
		m.redemptions, m.houseHealth, m.notifications,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) CompletionRecorded(mode string, coins int) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(mode).Inc()
	m.coinsAwarded.Add(float64(coins))
}

func (m *Metrics) CompletionRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) CompletionCancelled() {
	if m == nil {
		return
	}
	m.cancellations.Inc()
}

func (m *Metrics) RewardRequested() {
	if m == nil {
		return
	}
	m.redemptions.Inc()
}

func (m *Metrics) SetHouseHealth(h int) {
	if m == nil {
		return
	}
	m.houseHealth.Set(float64(h))
}

func (m *Metrics) NotificationSent(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}
