package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loglens_events_ingested_total",
		Help: "Events accepted by the ingest pipeline",
	}, []string{"service"})

	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loglens_validation_failures_total",
		Help: "Submissions rejected by schema validation",
	}, []string{"service"})

	WriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loglens_write_failures_total",
		Help: "Non-fatal sink write failures after acceptance",
	}, []string{"sink"})

	ProvisioningAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loglens_provisioning_attempts_total",
		Help: "Dataset and table provisioning attempts by outcome",
	}, []string{"resource", "outcome"})

	RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loglens_request_latency_seconds",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
