// Package metrics registers the Prometheus instruments for the fee
// collection core. Everything registers on the default registry and is
// served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsCreated counts payment requests minted (QR generated),
	// including bulk-posted ones.
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unipay_payment_requests_created_total",
		Help: "Number of payment requests created.",
	})

	// PaymentsProcessed counts committed payments, both QR redemptions
	// and walk-ups.
	PaymentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unipay_payments_processed_total",
		Help: "Number of payments committed.",
	})

	// RedemptionsRejected counts rejected redemption attempts by kind
	// (invalid_signature, wrong_organization, already_processed,
	// expired, insufficient_amount, not_permitted).
	RedemptionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unipay_redemptions_rejected_total",
		Help: "Number of rejected redemption attempts by rejection kind.",
	}, []string{"kind"})

	// PaymentsVoided counts voided payments.
	PaymentsVoided = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unipay_payments_voided_total",
		Help: "Number of payments voided.",
	})

	// HTTPRequests counts HTTP requests by method, path pattern, and
	// status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unipay_http_requests_total",
		Help: "Number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request latency by path pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unipay_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
