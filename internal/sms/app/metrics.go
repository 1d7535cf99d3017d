package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	smsSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_gateway",
			Name:      "sends_total",
			Help:      "Total send calls by outcome.",
		},
		[]string{"outcome"}, // "success", "resolve_error", "transport_error", "silenced", "log_error"
	)

	smsSendDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sms_gateway",
			Name:      "transport_send_duration_seconds",
			Help:      "Duration of mail transport calls.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	deliveryLogEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sms_gateway",
			Name:      "delivery_log_entries_total",
			Help:      "Total delivery log entries written.",
		},
	)
)
