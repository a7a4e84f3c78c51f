// Package metrics содержит Prometheus-метрики релея уведомлений.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы обработки запроса.
const (
	OutcomeSent             = "sent"
	OutcomeLogged           = "logged"
	OutcomeBadRequest       = "bad_request"
	OutcomeProviderRejected = "provider_rejected"
	OutcomeInternalError    = "internal_error"
)

// RelayMetrics метрики обработки запросов и обращений к провайдеру.
type RelayMetrics struct {
	requests         *prometheus.CounterVec
	providerDuration prometheus.Histogram
}

// NewRelayMetrics создает метрики и регистрирует их в registry.
func NewRelayMetrics(registry prometheus.Registerer) (*RelayMetrics, error) {
	m := &RelayMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "push_relay_requests_total",
				Help: "Total number of relay requests by outcome",
			},
			[]string{"outcome"},
		),
		providerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "push_relay_provider_duration_seconds",
				Help:    "Time taken by push provider calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
		),
	}
	if err := registry.Register(m.requests); err != nil {
		return nil, fmt.Errorf("failed to register requests counter: %w", err)
	}
	if err := registry.Register(m.providerDuration); err != nil {
		return nil, fmt.Errorf("failed to register provider histogram: %w", err)
	}
	return m, nil
}

// RecordOutcome увеличивает счетчик исхода. Безопасен для nil.
func (m *RelayMetrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// ObserveProviderCall фиксирует длительность вызова провайдера. Безопасен для nil.
func (m *RelayMetrics) ObserveProviderCall(d time.Duration) {
	if m == nil {
		return
	}
	m.providerDuration.Observe(d.Seconds())
}

// Requests возвращает счетчик запросов (используется в тестах).
func (m *RelayMetrics) Requests() *prometheus.CounterVec {
	return m.requests
}
