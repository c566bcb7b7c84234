// Package metrics holds the process-wide prometheus collectors for the ledger.
package metrics

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

var (
    // StorageAcquireAttempts counts connection acquisitions by result (ok, retry, exhausted).
    StorageAcquireAttempts = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: namespace,
            Subsystem: "storage",
            Name:      "acquire_attempts_total",
            Help:      "Connection acquisition attempts by result",
        },
        []string{"result"},
    )
    // StorageCallDuration observes gateway round trips by operation.
    StorageCallDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: namespace,
            Subsystem: "storage",
            Name:      "call_duration_seconds",
            Help:      "Duration of storage round trips in seconds",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"op"},
    )
    // EntriesRecorded counts recordEntry calls by kind and outcome.
    EntriesRecorded = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: namespace,
            Name:      "entries_recorded_total",
            Help:      "Entry record attempts by kind and outcome",
        },
        []string{"kind", "outcome"},
    )
    // IDCollisions counts entry id collisions that were retried.
    IDCollisions = promauto.NewCounter(
        prometheus.CounterOpts{
            Namespace: namespace,
            Name:      "entry_id_collisions_total",
            Help:      "Entry id collisions retried with a fresh id",
        },
    )
    // BalanceReads counts balance reads by status (ok, unavailable).
    BalanceReads = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: namespace,
            Name:      "balance_reads_total",
            Help:      "Balance reads by status",
        },
        []string{"status"},
    )
    // EventsPublished counts EntryRecorded publications by outcome.
    EventsPublished = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: namespace,
            Name:      "events_published_total",
            Help:      "EntryRecorded events by publish outcome",
        },
        []string{"outcome"},
    )
    // HTTPRequests and HTTPRequestDuration back the read-only HTTP surface.
    HTTPRequests = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: namespace,
            Name:      "http_requests_total",
            Help:      "Total number of HTTP requests",
        },
        []string{"method", "status"},
    )
    HTTPRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: namespace,
            Name:      "http_request_duration_seconds",
            Help:      "Duration of HTTP requests in seconds",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"method", "status"},
    )
)
