// Package metrics описывает Prometheus-метрики сервиса аутентификации.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ResultOK — значение метки result для успешной операции.
const ResultOK = "ok"

// Auth собирает счётчики и длительности операций аутентификации.
type Auth struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAuth регистрирует метрики в reg.
func NewAuth(reg prometheus.Registerer) *Auth {
	m := &Auth{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "auth",
			Name:      "requests_total",
			Help:      "Number of auth operations by operation and result kind.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fintrack",
			Subsystem: "auth",
			Name:      "duration_seconds",
			Help:      "Duration of auth operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Observe учитывает одну операцию. result — ResultOK или вид ошибки.
func (m *Auth) Observe(operation, result string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
