package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillproof_ledger_requests_total",
		Help: "Ledger RPC calls by operation and outcome",
	}, []string{"op", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillproof_ledger_request_duration_seconds",
		Help:    "Ledger RPC call duration in seconds, including receipt waits for writes",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"op"})
)

const (
	outcomeOK            = "ok"
	outcomeFailed        = "failed"
	outcomeIndeterminate = "indeterminate"
	outcomeInvalid       = "invalid"
)
