package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "personal_notes"

// Metrics 持久化层指标
// Metrics counters of the persistence facade
type Metrics struct {
	Fallbacks   *prometheus.CounterVec
	LocalErrors *prometheus.CounterVec
	RemoteUp    prometheus.Gauge
}

// NewMetrics 创建指标并注册到 reg；reg 为 nil 时不注册
// NewMetrics registers on reg, reusing collectors that are already registered
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fallback_total",
			Help:      "Remote operations that fell back to local storage.",
		}, []string{"op"}),
		LocalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "local_errors_total",
			Help:      "Failed reads or writes of the local collection.",
		}, []string{"op"}),
		RemoteUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "remote_up",
			Help:      "1 when the last remote probe succeeded.",
		}),
	}
	if reg == nil {
		return m
	}
	m.Fallbacks = register(reg, m.Fallbacks)
	m.LocalErrors = register(reg, m.LocalErrors)
	m.RemoteUp = register(reg, m.RemoteUp)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}
