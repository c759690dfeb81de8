package grpc

import (
	"context"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/infra/health"
	"go.uber.org/zap"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "auth.v1.AuthService"

// HealthReporter mirrors the dependency probes into the standard gRPC health service.
type HealthReporter struct {
	checker  *health.Checker
	srv      *grpchealth.Server
	interval time.Duration
	log      *zap.Logger
}

func NewHealthReporter(checker *health.Checker, interval time.Duration, log *zap.Logger) *HealthReporter {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	srv := grpchealth.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{checker: checker, srv: srv, interval: interval, log: log}
}

func (h *HealthReporter) Server() healthpb.HealthServer { return h.srv }

// Update runs the probes once and publishes the result.
func (h *HealthReporter) Update(ctx context.Context) health.Report {
	rep := h.checker.Check(ctx)
	st := healthpb.HealthCheckResponse_SERVING
	if !rep.Healthy() {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		for name, err := range rep.Errors {
			h.log.Warn("dependency check failed", zap.String("dependency", name), zap.Error(err))
		}
	}
	h.srv.SetServingStatus("", st)
	h.srv.SetServingStatus(ServiceName, st)
	return rep
}

// Run refreshes the status until ctx ends, then marks everything NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) error {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	h.Update(ctx)
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return nil
		case <-t.C:
			h.Update(ctx)
		}
	}
}
