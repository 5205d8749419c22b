// Package metrics содержит Prometheus-метрики сервиса и HTTP-сервер для их отдачи.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"technotes/pkg/logger"
)

const (
	namespace = "technotes"

	logMetricsServerStarted = "metrics server running"
	errMetricsServerFailed  = "metrics server failed"
)

// Metrics объединяет все метрики сервиса в отдельном реестре.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entities *prometheus.CounterVec
}

// New создает и регистрирует метрики.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		entities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entity_mutations_total",
				Help:      "Number of successful entity mutations",
			},
			[]string{"entity", "operation"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.entities,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRequest учитывает завершенный HTTP-запрос. Нулевой *Metrics ничего не делает.
func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(latency.Seconds())
}

// EntityMutated учитывает успешное изменение сущности.
func (m *Metrics) EntityMutated(entity, operation string) {
	if m == nil {
		return
	}
	m.entities.WithLabelValues(entity, operation).Inc()
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler возвращает HTTP-обработчик для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server отдает метрики на отдельном адресе.
type Server struct {
	srv *http.Server
}

// StartServer запускает сервер метрик в фоне.
func (m *Metrics) StartServer(ctx context.Context, addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log(ctx).Info(ctx, logMetricsServerStarted, zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log(ctx).Error(ctx, errMetricsServerFailed, zap.Error(err))
		}
	}()

	return &Server{srv: srv}
}

// Shutdown останавливает сервер метрик.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	return nil
}
