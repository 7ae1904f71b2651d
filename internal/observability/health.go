package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RowCounter reports how many rows the feed has appended.
type RowCounter interface {
	Len() int
}

// HealthChecker manages health checks for both gRPC and HTTP
type HealthChecker struct {
	grpcHealth *health.Server
	httpServer *http.Server
	logger     *zap.Logger
	mu         sync.RWMutex
	ready      bool
	kafkaReady bool
	usesKafka  bool
	feedReady  bool
	usesFeed   bool
	rows       RowCounter
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		grpcHealth: health.NewServer(),
		logger:     logger,
		ready:      true,
	}
}

// RegisterGRPC registers the health service with the gRPC server
func (h *HealthChecker) RegisterGRPC(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.grpcHealth)
	h.grpcHealth.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
}

// StartHTTPServer starts the HTTP health check server
func (h *HealthChecker) StartHTTPServer(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealthz)
	mux.HandleFunc("/feedz", h.handleFeedz)

	h.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	h.logger.Info("starting HTTP health server", zap.String("addr", addr))
	return h.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the health checker
func (h *HealthChecker) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.ready = false
	h.grpcHealth.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	h.mu.Unlock()

	if h.httpServer != nil {
		return h.httpServer.Shutdown(ctx)
	}
	return nil
}

// SetKafkaReady sets the Kafka client readiness status
func (h *HealthChecker) SetKafkaReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.kafkaReady = ready
	h.usesKafka = true
}

// SetFeedReady sets the feed loop readiness status
func (h *HealthChecker) SetFeedReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feedReady = ready
	h.usesFeed = true
}

// SetRowCounter wires the table whose row count /feedz reports
func (h *HealthChecker) SetRowCounter(rows RowCounter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = rows
}

func (h *HealthChecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	ready := h.ready
	kafkaReady := h.kafkaReady
	usesKafka := h.usesKafka
	feedReady := h.feedReady
	usesFeed := h.usesFeed
	h.mu.RUnlock()

	if ready && (!usesKafka || kafkaReady) && (!usesFeed || feedReady) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT_READY"))
	}
}

func (h *HealthChecker) handleFeedz(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	rows := h.rows
	h.mu.RUnlock()

	if rows == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("NO_FEED"))
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "rows=%d\n", rows.Len())
}
