package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the bot's prometheus collectors.
// Each Metrics owns its registry so several bots (or tests) never collide.
type Metrics struct {
	Registry         *prometheus.Registry
	Updates          *prometheus.CounterVec
	TelegramRequests *prometheus.CounterVec
	QuoteRequests    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safemoney",
			Name:      "updates_total",
			Help:      "Inbound webhook updates by kind",
		}, []string{"kind"}),
		TelegramRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safemoney",
			Name:      "telegram_requests_total",
			Help:      "Outbound Bot API calls by method and result",
		}, []string{"method", "result"}),
		QuoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safemoney",
			Name:      "quote_requests_total",
			Help:      "Price source and conversion calls by operation and result",
		}, []string{"op", "result"}),
	}
	m.Registry.MustRegister(
		m.Updates,
		m.TelegramRequests,
		m.QuoteRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
