package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goroku-app/goroku/internal/ports"
)

const opsShutdownTimeout = 5 * time.Second

// OpsServer is the operational HTTP listener served in daemon mode. It
// exposes liveness, aggregated health, and Prometheus metrics. It is not
// part of the product surface.
type OpsServer struct {
	addr     string
	registry ports.HealthRegistry
	logger   *slog.Logger
}

// NewOpsServer creates an ops listener bound to addr.
func NewOpsServer(addr string, registry ports.HealthRegistry, logger *slog.Logger) *OpsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpsServer{addr: addr, registry: registry, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *OpsServer) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", s.handleLiveness)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "ops listener started", slog.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *OpsServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHealth runs every registered check and returns 503 when any
// component reports unhealthy.
func (s *OpsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := s.registry.CheckAll(r.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
