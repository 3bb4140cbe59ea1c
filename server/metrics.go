package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the server's Prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	logins   *prometheus.CounterVec
	reloads  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, records, sessions func() float64) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gccdash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "code"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gccdash",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gccdash",
			Name:      "dataset_reloads_total",
			Help:      "Dataset reloads requested over HTTP, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.requests,
		m.logins,
		m.reloads,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "gccdash",
			Name:      "dataset_records",
			Help:      "Records in the current dataset.",
		}, records),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "gccdash",
			Name:      "sessions",
			Help:      "Live sessions.",
		}, sessions),
	)
	return m
}
