// Package metrics defines and registers all custom Prometheus metrics for the
// shop auth service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shop_auth"

// ── Credential metrics ────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login calls.
// Labels:
//   - operation: "register", "login" or "check_status"
//   - result: "success" or the error kind (e.g. "invalid_credentials", "duplicate")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of credential operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// TokenValidationsTotal counts bearer token validations.
// Labels:
//   - transport: "http" or "ws"
//   - result: "valid", "invalid", "inactive" or "error"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of token validations, by transport and result.",
	},
	[]string{"transport", "result"},
)

// AuthorizationDecisionsTotal counts role guard decisions.
// Label:
//   - decision: "allow" or "deny"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of role guard decisions.",
	},
	[]string{"decision"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayConnections tracks the number of open, authenticated connections.
var GatewayConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gateway_connections",
		Help:      "Current number of open authenticated websocket connections.",
	},
)

// GatewayHandshakesRejectedTotal counts connections dropped at handshake.
var GatewayHandshakesRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_handshakes_rejected_total",
		Help:      "Total number of websocket handshakes rejected by token validation.",
	},
)

// GatewayMessagesRelayedTotal counts inbound chat messages relayed to all peers.
var GatewayMessagesRelayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_messages_relayed_total",
		Help:      "Total number of chat messages relayed.",
	},
)

// GatewayEventsDeliveredTotal counts outbound frames written to connections.
// Label:
//   - event: outbound event name (e.g. "clients-updated")
var GatewayEventsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_events_delivered_total",
		Help:      "Total number of outbound events written to connections.",
	},
	[]string{"event"},
)

// GatewayDeliveriesDroppedTotal counts outbound frames dropped on a full queue.
var GatewayDeliveriesDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_deliveries_dropped_total",
		Help:      "Total number of outbound events dropped because a worker queue was full.",
	},
)

// GatewayQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var GatewayQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gateway_queue_depth",
		Help:      "Current number of events pending in each delivery worker channel.",
	},
	[]string{"worker_id"},
)
