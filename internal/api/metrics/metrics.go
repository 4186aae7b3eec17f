// Package metrics defines and registers all custom Prometheus metrics for
// the Kerala Cultural Hub API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry via promauto at
// package load; the /metrics route is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "culturalhub"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignInsTotal counts password sign-in attempts.
// Label:
//   - result: "success", "failure"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of password sign-in attempts, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "authorized", "loading", "unauthenticated", "forbidden"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"decision"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly created ticket orders.
// Label:
//   - category: the event category (e.g. "kathakali")
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of ticket orders created, by event category.",
	},
	[]string{"category"},
)

// PaymentIntentsTotal counts payment intent creation attempts.
// Label:
//   - result: "success", "invalid", "failure"
var PaymentIntentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Total number of payment intent creation attempts, by result.",
	},
	[]string{"result"},
)

// ── Payment webhook metrics ───────────────────────────────────────────────────

// PaymentEventsProcessedTotal counts webhook events that completed processing.
// Label:
//   - type: the provider event type (e.g. "payment_intent.succeeded")
var PaymentEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_events_processed_total",
		Help:      "Total number of payment webhook events successfully processed.",
	},
	[]string{"type"},
)

// PaymentEventsErrorsTotal counts webhook events that failed processing.
// Label:
//   - reason: "bad_signature", "bad_payload", "process_failed"
var PaymentEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_events_errors_total",
		Help:      "Total number of payment webhook events that failed processing.",
	},
	[]string{"reason"},
)
