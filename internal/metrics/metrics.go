// Syncroom - Real-time Collaborative Workspace Relay
// Copyright 2026 The Syncroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncroom/syncroom

// Package metrics defines Syncroom's Prometheus instrumentation.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API layer at /metrics. Callers use the Record* helpers so
// label values stay within the documented sets.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcomes recorded by RecordEvent.
const (
	OutcomeOK             = "ok"
	OutcomeMalformed      = "malformed"
	OutcomeUnknownFile    = "unknown_file"
	OutcomeUnknownSession = "unknown_session"
	OutcomeRosterMiss     = "roster_miss"
	OutcomeRejected       = "rejected"
	OutcomeRateLimited    = "rate_limited"
)

// Reasons recorded by RecordDrop.
const (
	DropSlowConsumer = "slow_consumer"
	DropRateLimited  = "rate_limited"
	DropOversized    = "oversized"
)

var (
	// Relay Metrics
	RelayConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncroom_connections",
			Help: "Current number of connected WebSocket clients",
		},
	)

	RelaySessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncroom_sessions",
			Help: "Current number of live sessions in the directory",
		},
	)

	RelayEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncroom_events_total",
			Help: "Total number of inbound events handled, by event name and outcome",
		},
		[]string{"event", "outcome"},
	)

	RelayEventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncroom_event_duration_seconds",
			Help:    "Time spent handling an inbound event",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
		[]string{"event"},
	)

	RelayFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncroom_broadcast_fanout",
			Help:    "Number of recipients per group broadcast",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		},
	)

	RelayMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncroom_messages_sent_total",
			Help: "Total number of messages queued to clients",
		},
	)

	RelayMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncroom_messages_received_total",
			Help: "Total number of frames read from clients",
		},
	)

	RelayDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncroom_dropped_total",
			Help: "Total number of dropped messages or connections, by reason",
		},
		[]string{"reason"},
	)

	RelayEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncroom_session_evictions_total",
			Help: "Total number of idle sessions evicted",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncroom_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncroom_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncroom_api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordEvent records the outcome and handling time of one inbound event.
func RecordEvent(event, outcome string, duration time.Duration) {
	RelayEventsTotal.WithLabelValues(event, outcome).Inc()
	RelayEventDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// RecordBroadcast records a group emission to n recipients.
func RecordBroadcast(n int) {
	RelayFanout.Observe(float64(n))
	RelayMessagesSent.Add(float64(n))
}

// RecordDrop records a dropped message or connection.
func RecordDrop(reason string) {
	RelayDropped.WithLabelValues(reason).Inc()
}

// RecordEviction records idle sessions removed by the janitor.
func RecordEviction(n int) {
	if n <= 0 {
		return
	}
	RelayEvictions.Add(float64(n))
	RelaySessions.Sub(float64(n))
}

// TrackConnection adjusts the connected-client gauge.
func TrackConnection(inc bool) {
	if inc {
		RelayConnections.Inc()
	} else {
		RelayConnections.Dec()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
