// Package metrics registers the Prometheus collectors of the stand.
// They are served on /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

const namespace = "grill"

var (
	// Transactions counts settlements by kind (full, partial, on_the_house).
	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Settled payments by kind.",
	}, []string{"kind"})

	// Revenue counts booked Kč by payment channel.
	Revenue = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revenue_czk_total",
		Help:      "Booked amounts in Kč by channel (cash, card, qr, on_the_house).",
	}, []string{"channel"})

	DailyCloses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "daily_closes_total",
		Help:      "Completed daily closes.",
	})

	OutboxDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "delivered_total",
		Help:      "Events delivered to the backend.",
	})

	OutboxFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "failures_total",
		Help:      "Failed delivery attempts.",
	})

	OutboxPending = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "pending",
		Help:      "Events waiting for delivery.",
	})

	// RPCDuration observes every RPC by procedure and result code.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "RPC latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure", "code"})
)

// ObservePayment records one settlement.
func ObservePayment(kind string, p models.Payment) {
	Transactions.WithLabelValues(kind).Inc()
	Revenue.WithLabelValues("cash").Add(float64(p.Cash))
	Revenue.WithLabelValues("card").Add(float64(p.Card))
	Revenue.WithLabelValues("qr").Add(float64(p.QR))
	Revenue.WithLabelValues("on_the_house").Add(float64(p.OnTheHouse))
}
