package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Social Metrics
	SocialToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_toggles_total",
			Help: "Total number of toggle operations by kind and resulting state",
		},
		[]string{"kind", "state"}, // kind: follow, like, save; state: on, off
	)

	CommentsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comments_added_total",
			Help: "Total number of comments added",
		},
	)

	PartialWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partial_writes_total",
			Help: "Dual-document writes where only the first write committed",
		},
		[]string{"operation"},
	)

	// Notification Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_events_published_total",
			Help: "Total number of social events handed to the event bus",
		},
		[]string{"type"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_events_dropped_total",
			Help: "Social events that could not be published or consumed",
		},
		[]string{"type", "stage"}, // stage: publish, store, forward
	)

	NotificationsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_stored_total",
			Help: "Total number of notifications written by the fan-out consumer",
		},
		[]string{"type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordToggle counts a toggle transition
func RecordToggle(kind string, active bool) {
	state := "off"
	if active {
		state = "on"
	}
	SocialToggles.WithLabelValues(kind, state).Inc()
}

// Middleware records request latency keyed by route template
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			HTTPRequestDuration.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Server exposes /metrics on its own port
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server listening on addr
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}
}

// Start blocks serving metrics until Shutdown
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the metrics server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
