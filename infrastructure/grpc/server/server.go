// Package server implements the gRPC transport of the chat backend.
package server

import (
	"log/slog"

	"chat-sync/auth"
	pb "chat-sync/proto/chatsync"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer registers the SyncService behind the logging and bearer
// interceptors, plus the standard health service. Authenticate and the
// health checks are the only calls accepted without a token.
func NewGRPCServer(log *slog.Logger, authenticator auth.Authenticator, syncServer pb.SyncServiceServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(log),
			auth.AuthInterceptor(authenticator,
				pb.SyncService_Authenticate_FullMethodName,
				healthpb.Health_Check_FullMethodName,
			),
		))

	pb.RegisterSyncServiceServer(s, syncServer)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)

	return s
}
