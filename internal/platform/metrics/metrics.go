// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledgerbook"

// JournalsPosted counts drafts successfully posted.
var JournalsPosted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "posting",
	Name:      "journals_posted_total",
	Help:      "Total journal entries posted.",
})

// JournalsReversed counts posted entries reversed.
var JournalsReversed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "posting",
	Name:      "journals_reversed_total",
	Help:      "Total journal entries reversed.",
})

// PostingFailures counts rejected post and reverse attempts by error code.
var PostingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "posting",
	Name:      "failures_total",
	Help:      "Total post and reverse attempts that failed, by operation and error code.",
}, []string{"operation", "code"})

// LedgerInconsistencies counts reports whose totals did not close.
var LedgerInconsistencies = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reporting",
	Name:      "inconsistencies_total",
	Help:      "Total reports that failed their balance check, by report.",
}, []string{"report"})

// HTTPRequestDuration observes request latency by route.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method, route and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})
