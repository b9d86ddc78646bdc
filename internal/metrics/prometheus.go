package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "webhook_orderflow"

// Prometheus exposes webhook metrics on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	WebhooksTotal   *prometheus.CounterVec
	WebhookDuration *prometheus.HistogramVec
}

func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		WebhooksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Webhook deliveries by outcome.",
		}, []string{"outcome"}),
		WebhookDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "webhook",
			Name:      "duration_seconds",
			Help:      "Webhook handling latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"outcome"}),
	}
}

func (p *Prometheus) ObserveWebhook(_ context.Context, outcome string, elapsed time.Duration) {
	p.WebhooksTotal.WithLabelValues(outcome).Inc()
	p.WebhookDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
