// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes the client's Prometheus instrumentation:
// counters/gauges registered once at package init and incremented
// from the hot path via promauto, without touching the registry
// directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "valkeygo"

var (
	// CommandsTotal counts executed commands by name and outcome.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name: "commands_total",
			Help: "total commands executed, by command name and outcome",
		},
		[]string{"command", "outcome"},
	)

	// CommandDurationSeconds observes end-to-end command latency.
	CommandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name: "command_duration_seconds",
			Help: "command execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// ConnectionsOpen reports currently open connections per node.
	ConnectionsOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name: "connections_open",
			Help: "currently open connections, by node address",
		},
		[]string{"node"},
	)

	// ConnectionsLeased reports currently leased connections per node.
	ConnectionsLeased = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name: "connections_leased",
			Help: "currently leased connections, by node address",
		},
		[]string{"node"},
	)

	// PoolCircuitBreakerOpen reports whether a node's pool circuit
	// breaker is currently open (1) or closed (0).
	PoolCircuitBreakerOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name: "pool_circuit_breaker_open",
			Help: "1 when a node's pool circuit breaker is open, 0 otherwise",
		},
		[]string{"node"},
	)

	// RetriesTotal counts redirect/backoff retries by decision kind.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name: "retries_total",
			Help: "total command retries, by decision kind",
		},
		[]string{"decision"},
	)

	// SubscriptionFiltersActive reports the number of active pub/sub
	// filters with a non-zero refcount.
	SubscriptionFiltersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name: "subscription_filters_active",
			Help: "number of subscription filters with refcount > 0",
		},
	)
)
