package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the gRPC health service name answered besides the overall "" entry.
const ServiceName = "authext.Extension"

// GRPCServer answers grpc.health.v1.Health/Check from Server.Check.
// Watch is not supported.
type GRPCServer struct {
	healthpb.UnimplementedHealthServer
	checker *Server
}

// NewGRPCServer wraps checker for the gRPC health protocol.
func NewGRPCServer(checker *Server) *GRPCServer {
	return &GRPCServer{checker: checker}
}

// Register adds the health service to s.
func (g *GRPCServer) Register(s grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(s, g)
}

// Check reports SERVING or NOT_SERVING. A failed dependency is a status, not an RPC error.
func (g *GRPCServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	if err := g.checker.Check(ctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
