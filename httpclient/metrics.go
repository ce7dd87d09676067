package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weblib_http_request_duration_seconds",
			Help:    "Duration of HTTP request attempts in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "host"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weblib_http_requests_total",
			Help: "Total number of HTTP request attempts by status code",
		},
		[]string{"method", "host", "code"},
	)

	retryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weblib_http_retries_total",
			Help: "Total number of HTTP request retries",
		},
		[]string{"host"},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weblib_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"host"},
	)
)

// recordRequest records one attempt. Failed attempts without a response are
// counted under code "error".
func recordRequest(method, host string, resp *Response, err error, elapsed time.Duration) {
	code := "error"
	if err == nil && resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	requestTotal.WithLabelValues(method, host, code).Inc()
	requestDuration.WithLabelValues(method, host).Observe(elapsed.Seconds())
}

func recordRetry(host string) {
	retryTotal.WithLabelValues(host).Inc()
}

func recordBreakerState(host string, state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateClosed:
		value = 0
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	circuitBreakerState.WithLabelValues(host).Set(value)
}

// MetricsHandler serves the client metrics in the Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
