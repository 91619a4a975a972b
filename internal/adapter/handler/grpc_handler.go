package handler

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inventory-api/internal/core/service"
)

// HealthServiceName is the service name accepted by Check besides "".
const HealthServiceName = "inventory"

// GRPCHealthHandler answers grpc.health.v1 checks by pinging storage on
// each call.
type GRPCHealthHandler struct {
	grpc_health_v1.UnimplementedHealthServer
	inventoryService *service.InventoryService
}

func NewGRPCHealthHandler(inventoryService *service.InventoryService) *GRPCHealthHandler {
	return &GRPCHealthHandler{inventoryService: inventoryService}
}

func (h *GRPCHealthHandler) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", HealthServiceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if err := h.inventoryService.Ping(ctx); err != nil {
		log.Printf("grpc health: storage ping failed: %v", err)
		return &grpc_health_v1.HealthCheckResponse{
			Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		}, nil
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_SERVING,
	}, nil
}
