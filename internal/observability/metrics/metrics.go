// Package metrics owns the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	invoicesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_invoices_created_total",
		Help: "Invoices created, labelled by whether payment was embedded",
	}, []string{"paid"})

	paymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_payments_total",
		Help: "Payment confirmation attempts by result",
	}, []string{"result"})

	invoiceNumberRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_invoice_number_retries_total",
		Help: "Invoice creations retried after an invoice number collision",
	})

	authzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_authz_denials_total",
		Help: "Requests rejected by the RBAC guard",
	}, []string{"role"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_jobs_processed_total",
		Help: "Background jobs handled by type and result",
	}, []string{"type", "result"})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func InvoiceCreated(paid bool) {
	if paid {
		invoicesCreated.WithLabelValues("true").Inc()
		return
	}
	invoicesCreated.WithLabelValues("false").Inc()
}

// PaymentResult is one of "ok", "conflict", "rejected", "error".
func PaymentResult(result string) {
	paymentsConfirmed.WithLabelValues(result).Inc()
}

func InvoiceNumberRetry() { invoiceNumberRetries.Inc() }

func AuthzDenied(role string) {
	if role == "" {
		role = "none"
	}
	authzDenials.WithLabelValues(role).Inc()
}

func JobProcessed(jobType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	jobsProcessed.WithLabelValues(jobType, result).Inc()
}
