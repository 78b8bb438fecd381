// Package health exposes process health over the standard grpc.health.v1 service.
package health

import (
	"context"
	"log/slog"
	"net"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName is the health service name reported for the bot itself.
const ServiceName = "hungrybot"

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Server serves grpc.health.v1 and keeps statuses current by running checks.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger

	mu      sync.Mutex
	checks  map[string]Check
	timeout time.Duration
}

// NewServer creates a health server. timeout bounds each check run.
func NewServer(timeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	gs := grpc.NewServer(grpc.KeepaliveParams(keepalive.ServerParameters{
		Time:    2 * time.Minute,
		Timeout: 10 * time.Second,
	}))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		grpc:    gs,
		health:  hs,
		logger:  logger,
		checks:  make(map[string]Check),
		timeout: timeout,
	}
}

// AddCheck registers a dependency check under name.
func (s *Server) AddCheck(name string, p Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = p
	s.health.SetServingStatus(name, healthpb.HealthCheckResponse_UNKNOWN)
}

// Refresh runs every check once. The overall ("") and ServiceName statuses
// are SERVING only when every check passes.
func (s *Server) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.Unlock()
	sort.Strings(names)

	healthy := true
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := checks[name](checkCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			healthy = false
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn("Health check failed", "check", name, "error", err)
		}
		s.health.SetServingStatus(name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", overall)
	s.health.SetServingStatus(ServiceName, overall)
	return healthy
}

// Run refreshes statuses every interval until ctx is done.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Serve accepts health RPCs on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health listening", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and stops the server gracefully.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
