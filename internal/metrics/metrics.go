// Package metrics holds the Prometheus collectors exported by the HTTP server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formbuilder_http_requests_total",
		Help: "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "formbuilder_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formbuilder_submissions_total",
		Help: "Form submissions by outcome",
	}, []string{"outcome"}) // outcome=valid|invalid

	rejectedActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formbuilder_rejected_actions_total",
		Help: "Builder actions rejected by a precondition, by reason",
	}, []string{"reason"})

	fieldsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formbuilder_fields",
		Help: "Number of fields in the served form",
	})
)

// RecordRequest counts one finished HTTP request. route should be the router
// pattern, not the raw path, to keep cardinality bounded.
func RecordRequest(route, method string, code int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordSubmission counts a submit attempt.
func RecordSubmission(valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRejected counts an action refused with a user-facing warning.
func RecordRejected(reason string) {
	rejectedActionsTotal.WithLabelValues(reason).Inc()
}

// SetFieldCount publishes the current number of fields.
func SetFieldCount(n int) {
	fieldsGauge.Set(float64(n))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
