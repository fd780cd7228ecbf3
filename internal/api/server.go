package api

import (
	"context"
	"fmt"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/forceweaver/revenue-health/internal/config"
)

// OpsServer is the gRPC operations endpoint: it exposes the standard health
// service for orchestrator probes plus reflection for debugging tooling.
type OpsServer struct {
	cfg        config.ServerConfig
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
}

// NewOpsServer constructs the ops server bound to the configured address.
func NewOpsServer(cfg config.ServerConfig, opts ...grpc.ServerOption) (*OpsServer, error) {
	lis, err := net.Listen("tcp", cfg.OpsAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.OpsAddress, err)
	}

	grpc_prometheus.EnableHandlingTimeHistogram()
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	}
	serverOpts = append(serverOpts, opts...)
	grpcServer := grpc.NewServer(serverOpts...)
	grpc_prometheus.Register(grpcServer)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	// Reflection helps grpcurl-style tooling in development environments.
	reflection.Register(grpcServer)

	return &OpsServer{
		cfg:        cfg,
		grpcServer: grpcServer,
		health:     healthSrv,
		listener:   lis,
	}, nil
}

// Start serves incoming gRPC requests until Shutdown is invoked.
func (s *OpsServer) Start() error {
	if s.grpcServer == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	return s.grpcServer.Serve(s.listener)
}

// SetServing flips the health service between SERVING and NOT_SERVING.
func (s *OpsServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Shutdown attempts a graceful shutdown, falling back to Stop after the
// context expires.
func (s *OpsServer) Shutdown(ctx context.Context) {
	if s.grpcServer == nil {
		return
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.grpcServer.Stop()
	case <-stopped:
	}
}

// Address exposes the bound listener address (useful for tests).
func (s *OpsServer) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GracefulTimeout returns the configured graceful timeout duration.
func (s *OpsServer) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
