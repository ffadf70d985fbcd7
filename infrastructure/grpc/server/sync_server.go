package server

import (
	"context"
	"fmt"
	"log/slog"

	"chat-sync/auth"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
	pb "chat-sync/proto/chatsync"
	"chat-sync/services"
)

type SyncServer struct {
	authService  services.IAuthService
	chatService  services.IChatService
	historyLimit int
	log          *slog.Logger
}

var _ pb.SyncServiceServer = (*SyncServer)(nil)

func NewSyncServer(log *slog.Logger, authService services.IAuthService, chatService services.IChatService, historyLimit int) *SyncServer {
	if historyLimit <= 0 {
		historyLimit = domain.DefaultHistoryLimit
	}
	return &SyncServer{authService: authService, chatService: chatService, historyLimit: historyLimit, log: log}
}

func (s *SyncServer) Authenticate(ctx context.Context, req *contract.AuthRequest) (*contract.AuthResponse, error) {
	result, err := s.authService.Authenticate(ctx, req.Login(), req.Password)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &contract.AuthResponse{Token: result.Token.String(), UserID: int64(result.UserID), Handle: result.Handle}, nil
}

func (s *SyncServer) Me(ctx context.Context, _ *contract.Empty) (*contract.MeResponse, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	me := contract.FromIdentity(identity)
	return &me, nil
}

func (s *SyncServer) ListPeers(ctx context.Context, _ *contract.Empty) (*contract.UsersResponse, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	peers, err := s.chatService.ListPeers(ctx, identity)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	users := contract.FromPeers(peers)
	return &users, nil
}

// History uses the configured default page size when the request carries no limit.
func (s *SyncServer) History(ctx context.Context, req *contract.HistoryRequest) (*contract.MessagesResponse, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	limit := s.historyLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	messages, err := s.chatService.History(ctx, identity, domain.UserID(req.With), limit)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	response := contract.FromMessages(messages)
	return &response, nil
}

func (s *SyncServer) Since(ctx context.Context, req *contract.SinceRequest) (*contract.MessagesResponse, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.chatService.Since(ctx, identity, domain.UserID(req.With), domain.MessageID(req.SinceID))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	response := contract.FromMessages(messages)
	return &response, nil
}

func (s *SyncServer) Send(ctx context.Context, req *contract.SendRequest) (*contract.SendResponse, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.To <= 0 {
		return nil, errors.MapToGRPCError(fmt.Errorf("%w: missing to", errors.ErrInvalidInput))
	}
	message, err := s.chatService.Send(ctx, identity, domain.UserID(req.To), req.Content)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	s.log.DebugContext(ctx, "Message sent", "message_id", message.ID, "user_id", identity.UserID)
	return &contract.SendResponse{OK: true, MessageID: int64(message.ID), Message: contract.FromMessage(message)}, nil
}

func (s *SyncServer) Delete(ctx context.Context, req *contract.DeleteRequest) (*contract.OKResponse, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID <= 0 {
		return nil, errors.MapToGRPCError(fmt.Errorf("%w: missing id", errors.ErrInvalidInput))
	}
	if err := s.chatService.Delete(ctx, identity, domain.MessageID(req.ID)); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &contract.OKResponse{OK: true}, nil
}

func identityFrom(ctx context.Context) (domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return domain.Identity{}, errors.MapToGRPCError(errors.ErrUnauthorized)
	}
	return identity, nil
}
