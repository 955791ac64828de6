package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrdersClassified counts classified orders by kind.
var OrdersClassified = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "passbook",
	Name:      "orders_classified_total",
	Help:      "Orders classified, by kind.",
}, []string{"kind"})

// RowsRejected counts export rows rejected at the ingest boundary.
var RowsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "passbook",
	Name:      "rows_rejected_total",
	Help:      "Export rows rejected for a missing row number or timestamp.",
})

// RequestDuration records HTTP latency by route pattern.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "passbook",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})
