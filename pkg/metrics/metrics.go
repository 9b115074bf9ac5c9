// Package metrics provides Prometheus metrics for the chat client's outgoing calls.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lewisedginton/shopping_chat_client/pkg/httpmiddleware"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "chat_client"
)

// Outcome labels shared by the chat and login counters.
const (
	OutcomeOK             = "ok"
	OutcomeTransportError = "transport_error"
	OutcomeStatusError    = "status_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeRejected       = "rejected"
)

// Endpoint labels for the duration histogram.
const (
	EndpointChat    = "chat"
	EndpointLogin   = "login"
	EndpointHistory = "history"
)

// Metrics collects counters for chat exchanges, login attempts and transcript growth.
// All methods are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	reg *prometheus.Registry

	ChatRequests      *prometheus.CounterVec
	LoginAttempts     *prometheus.CounterVec
	TranscriptEntries *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec

	routes  map[string]http.Handler
	server  *http.Server
	errChan chan error
	log     logger.Logger
}

// NewMetrics creates a Metrics instance with its own registry.
func NewMetrics(l logger.Logger) *Metrics {
	m := &Metrics{
		reg:    prometheus.NewRegistry(),
		routes: make(map[string]http.Handler),
		log:    l,
	}

	m.ChatRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "chat_requests_total",
		Help:      "Chat endpoint requests by outcome",
	}, []string{"outcome"})

	m.LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome",
	}, []string{"outcome"})

	m.TranscriptEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "transcript_entries_total",
		Help:      "Transcript entries rendered by sender",
	}, []string{"sender"})

	m.RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Outgoing request duration in seconds",
		Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
	}, []string{"endpoint"})

	m.reg.MustRegister(m.ChatRequests, m.LoginAttempts, m.TranscriptEntries, m.RequestDuration)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// AddCustomMetric registers a custom Prometheus collector.
func (m *Metrics) AddCustomMetric(c prometheus.Collector) {
	m.reg.MustRegister(c)
}

// ObserveChat records one chat endpoint exchange.
func (m *Metrics) ObserveChat(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(outcome).Inc()
	m.RequestDuration.WithLabelValues(EndpointChat).Observe(d.Seconds())
}

// ObserveLogin records one login attempt.
func (m *Metrics) ObserveLogin(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
	m.RequestDuration.WithLabelValues(EndpointLogin).Observe(d.Seconds())
}

// ObserveHistory records one history fetch.
func (m *Metrics) ObserveHistory(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(EndpointHistory).Observe(d.Seconds())
}

// IncTranscript counts a rendered transcript entry.
func (m *Metrics) IncTranscript(sender string) {
	if m == nil {
		return
	}
	m.TranscriptEntries.WithLabelValues(sender).Inc()
}

// Handle adds a GET route served next to /metrics. It must be called before Listen.
func (m *Metrics) Handle(pattern string, h http.Handler) {
	m.routes[pattern] = h
}

// Router builds the listener's handler: /metrics, routes added with Handle, and the
// default middleware stack.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	httpmiddleware.ApplyToRouter(r, httpmiddleware.WithLogger(m.log))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	for pattern, h := range m.routes {
		r.Method(http.MethodGet, pattern, h)
	}
	return r
}

// Listen starts the metrics HTTP server on the specified port.
func (m *Metrics) Listen(port int) {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))
	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.errChan = make(chan error, 1)
	go func() {
		err := m.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("Metrics listener failed", logger.ErrorField(err))
		}
		m.errChan <- err
	}()
}

// Shutdown stops the metrics listener started by Listen.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.server == nil {
		return nil
	}
	m.log.Info("Stopping metrics listener")
	if err := m.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	<-m.errChan
	return nil
}
