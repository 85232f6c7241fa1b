package health

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// GRPCHealth serves grpc.health.v1 backed by a database ping.
type GRPCHealth struct {
	grpc_health_v1.UnimplementedHealthServer

	db *gorm.DB
}

func NewGRPCHealth(db *gorm.DB) *GRPCHealth {
	return &GRPCHealth{db: db}
}

func (s *GRPCHealth) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if s.db == nil {
		return nil, status.Error(codes.Internal, "db not ready")
	}
	if err := pingDB(ctx, s.db); err != nil {
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func (s *GRPCHealth) Watch(req *grpc_health_v1.HealthCheckRequest, srv grpc_health_v1.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "Watch method not implemented")
}

// RegisterGRPC attaches the health service to srv.
func RegisterGRPC(srv *grpc.Server, h *GRPCHealth) {
	grpc_health_v1.RegisterHealthServer(srv, h)
}
