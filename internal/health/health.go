// Package health provides liveness, readiness and metrics endpoints.
//
// Docker and Kubernetes use /healthz and /readyz to monitor the daemon;
// /metrics exposes the Prometheus collectors. The same readiness flag is
// optionally published through the standard gRPC health service for
// probes that speak grpc.health.v1.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported through the gRPC health service.
const ServiceName = "voicebot"

// Server is a lightweight HTTP server that exposes /healthz, /readyz and /metrics.
type Server struct {
	port   int
	ready  atomic.Bool
	server *http.Server

	grpcHealth *grpchealth.Server
	grpcServer *grpc.Server
}

// New creates a new health check server.
func New(port int) *Server {
	s := &Server{port: port, grpcHealth: grpchealth.NewServer()}
	s.grpcHealth.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	s.grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.grpcHealth.SetServingStatus(ServiceName, status)
	s.grpcHealth.SetServingStatus("", status)
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Liveness: the process is up and serving HTTP.
		writeStatus(w, http.StatusOK, "ok")
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

// ServeGRPC publishes the readiness flag through grpc.health.v1 on port.
// It blocks until the context is cancelled.
func (s *Server) ServeGRPC(ctx context.Context, port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("grpc health listen: %w", err)
	}
	return s.serveGRPC(ctx, lis)
}

func (s *Server) serveGRPC(ctx context.Context, lis net.Listener) error {
	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.grpcHealth)

	slog.Info("grpc health listening", "addr", lis.Addr().String())

	go func() {
		<-ctx.Done()
		slog.Info("grpc health shutting down")
		s.grpcHealth.Shutdown()
		s.grpcServer.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc health serve: %w", err)
	}
	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
