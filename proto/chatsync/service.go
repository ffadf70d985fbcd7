// Package chatsync declares the chatsync.v1.SyncService gRPC service:
// its descriptor, the server interface and a client stub.
package chatsync

import (
	"context"

	"chat-sync/contract"

	"google.golang.org/grpc"
)

const ServiceName = "chatsync.v1.SyncService"

const (
	SyncService_Authenticate_FullMethodName = "/" + ServiceName + "/Authenticate"
	SyncService_Me_FullMethodName           = "/" + ServiceName + "/Me"
	SyncService_ListPeers_FullMethodName    = "/" + ServiceName + "/ListPeers"
	SyncService_History_FullMethodName      = "/" + ServiceName + "/History"
	SyncService_Since_FullMethodName        = "/" + ServiceName + "/Since"
	SyncService_Send_FullMethodName         = "/" + ServiceName + "/Send"
	SyncService_Delete_FullMethodName       = "/" + ServiceName + "/Delete"
)

// SyncServiceServer is implemented by the gRPC transport of the chat backend.
type SyncServiceServer interface {
	Authenticate(context.Context, *contract.AuthRequest) (*contract.AuthResponse, error)
	Me(context.Context, *contract.Empty) (*contract.MeResponse, error)
	ListPeers(context.Context, *contract.Empty) (*contract.UsersResponse, error)
	History(context.Context, *contract.HistoryRequest) (*contract.MessagesResponse, error)
	Since(context.Context, *contract.SinceRequest) (*contract.MessagesResponse, error)
	Send(context.Context, *contract.SendRequest) (*contract.SendResponse, error)
	Delete(context.Context, *contract.DeleteRequest) (*contract.OKResponse, error)
}

var SyncService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Authenticate", Handler: unary(SyncService_Authenticate_FullMethodName, SyncServiceServer.Authenticate)},
		{MethodName: "Me", Handler: unary(SyncService_Me_FullMethodName, SyncServiceServer.Me)},
		{MethodName: "ListPeers", Handler: unary(SyncService_ListPeers_FullMethodName, SyncServiceServer.ListPeers)},
		{MethodName: "History", Handler: unary(SyncService_History_FullMethodName, SyncServiceServer.History)},
		{MethodName: "Since", Handler: unary(SyncService_Since_FullMethodName, SyncServiceServer.Since)},
		{MethodName: "Send", Handler: unary(SyncService_Send_FullMethodName, SyncServiceServer.Send)},
		{MethodName: "Delete", Handler: unary(SyncService_Delete_FullMethodName, SyncServiceServer.Delete)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chatsync/v1/sync.proto",
}

func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&SyncService_ServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodHandler, running the
// server interceptor chain when one is installed.
func unary[Req, Resp any](fullMethod string, call func(SyncServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SyncServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SyncServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type SyncServiceClient interface {
	Authenticate(ctx context.Context, in *contract.AuthRequest, opts ...grpc.CallOption) (*contract.AuthResponse, error)
	Me(ctx context.Context, in *contract.Empty, opts ...grpc.CallOption) (*contract.MeResponse, error)
	ListPeers(ctx context.Context, in *contract.Empty, opts ...grpc.CallOption) (*contract.UsersResponse, error)
	History(ctx context.Context, in *contract.HistoryRequest, opts ...grpc.CallOption) (*contract.MessagesResponse, error)
	Since(ctx context.Context, in *contract.SinceRequest, opts ...grpc.CallOption) (*contract.MessagesResponse, error)
	Send(ctx context.Context, in *contract.SendRequest, opts ...grpc.CallOption) (*contract.SendResponse, error)
	Delete(ctx context.Context, in *contract.DeleteRequest, opts ...grpc.CallOption) (*contract.OKResponse, error)
}

type syncServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncServiceClient(cc grpc.ClientConnInterface) SyncServiceClient {
	return &syncServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) Authenticate(ctx context.Context, in *contract.AuthRequest, opts ...grpc.CallOption) (*contract.AuthResponse, error) {
	return invoke[contract.AuthResponse](ctx, c.cc, SyncService_Authenticate_FullMethodName, in, opts)
}

func (c *syncServiceClient) Me(ctx context.Context, in *contract.Empty, opts ...grpc.CallOption) (*contract.MeResponse, error) {
	return invoke[contract.MeResponse](ctx, c.cc, SyncService_Me_FullMethodName, in, opts)
}

func (c *syncServiceClient) ListPeers(ctx context.Context, in *contract.Empty, opts ...grpc.CallOption) (*contract.UsersResponse, error) {
	return invoke[contract.UsersResponse](ctx, c.cc, SyncService_ListPeers_FullMethodName, in, opts)
}

func (c *syncServiceClient) History(ctx context.Context, in *contract.HistoryRequest, opts ...grpc.CallOption) (*contract.MessagesResponse, error) {
	return invoke[contract.MessagesResponse](ctx, c.cc, SyncService_History_FullMethodName, in, opts)
}

func (c *syncServiceClient) Since(ctx context.Context, in *contract.SinceRequest, opts ...grpc.CallOption) (*contract.MessagesResponse, error) {
	return invoke[contract.MessagesResponse](ctx, c.cc, SyncService_Since_FullMethodName, in, opts)
}

func (c *syncServiceClient) Send(ctx context.Context, in *contract.SendRequest, opts ...grpc.CallOption) (*contract.SendResponse, error) {
	return invoke[contract.SendResponse](ctx, c.cc, SyncService_Send_FullMethodName, in, opts)
}

func (c *syncServiceClient) Delete(ctx context.Context, in *contract.DeleteRequest, opts ...grpc.CallOption) (*contract.OKResponse, error) {
	return invoke[contract.OKResponse](ctx, c.cc, SyncService_Delete_FullMethodName, in, opts)
}
