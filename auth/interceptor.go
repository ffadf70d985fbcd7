package auth

import (
	"context"

	"chat-sync/errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthInterceptor resolves the bearer token of every incoming gRPC call,
// except the listed public methods, and injects the identity into the context.
func AuthInterceptor(authenticator Authenticator, publicMethods ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]struct{}, len(publicMethods))
	for _, method := range publicMethods {
		public[method] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "metadata is missing")
		}

		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
		}

		identity, err := authenticator.Authenticate(ctx, values[0])
		if err != nil {
			return nil, errors.MapToGRPCError(err)
		}

		return handler(WithIdentity(ctx, identity), req)
	}
}
