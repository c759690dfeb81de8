package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/grpc/middleware"
	"github.com/Miraines/rbac-auth-service/internal/infra/config"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer builds the server with the interceptor chain, health service,
// metrics and reflection. TLS is enabled when a certificate is configured.
func NewGRPCServer(cfg *config.Config, healthSrv healthpb.HealthServer, logger *zap.Logger) (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(middleware.ChainUnaryServer(logger, cfg.RateLimitRPS, cfg.RateLimitBurst)),
	}
	if cfg.HTTPSCertFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	grpc_prometheus.Register(grpcServer)
	grpc_prometheus.EnableHandlingTimeHistogram()
	reflection.Register(grpcServer)
	return grpcServer, nil
}

// StartGRPCServer поднимает gRPC-сервер и останавливает его при отмене ctx.
func StartGRPCServer(ctx context.Context, cfg *config.Config, healthSrv healthpb.HealthServer, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return err
	}
	return Serve(ctx, lis, cfg, healthSrv, logger)
}

func Serve(ctx context.Context, lis net.Listener, cfg *config.Config, healthSrv healthpb.HealthServer, logger *zap.Logger) error {
	grpcServer, err := NewGRPCServer(cfg, healthSrv, logger)
	if err != nil {
		_ = lis.Close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("ctx cancelled, stopping gRPC server…")

	// graceful stop, 5 секунд максимум
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-stopCtx.Done():
		grpcServer.Stop()
	case <-done:
	}
	logger.Info("gRPC server stopped")
	return nil
}
