package internal

import (
	"context"
	"log/slog"
	"net/http"

	"chat-sync/auth"
	"chat-sync/infrastructure/grpc/server"
	"chat-sync/infrastructure/httpapi"
	"chat-sync/repositories"
	"chat-sync/services"
	"chat-sync/storage"

	"google.golang.org/grpc"
)

// App holds every component of a running backend, wired once at start up.
type App struct {
	Store         *storage.Store
	Users         repositories.IUserRepository
	Sessions      repositories.ISessionRepository
	Messages      repositories.IMessageRepository
	Tokens        *services.TokenStore
	Authenticator *services.SessionAuthenticator
	AuthService   services.IAuthService
	ChatService   services.IChatService
	HTTPHandler   http.Handler
	GRPCServer    *grpc.Server
}

// NewApp opens the store and builds both transports on top of the services.
func NewApp(config Config, log *slog.Logger) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store := storage.NewStore(storage.Options(config.BadgerFilepath, config.BadgerInMemory, log.Enabled(context.Background(), slog.LevelDebug)), log)
	db, err := store.DB()
	if err != nil {
		return nil, err
	}

	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	messages := repositories.NewMessageRepository(db, log)

	policy, err := services.NewCredentialPolicy(config.CredentialPolicy, users, auth.NewPasswordHasher(auth.DefaultArgon2Params))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	tokens := services.NewTokenStore(sessions, users, log, config.SessionDuration)
	authenticator := services.NewSessionAuthenticator(tokens)
	authService := services.NewAuthService(policy, tokens, log)
	chatService := services.NewChatService(users, messages, log)

	handler := httpapi.NewHandler(log, authService, chatService, store, config.HistoryDefaultLimit)
	router := httpapi.NewRouter(log, handler, authenticator, httpapi.RouterConfig{
		AllowedOrigins: config.Origins(),
		RequestTimeout: config.RequestTimeout,
	})

	syncServer := server.NewSyncServer(log, authService, chatService, config.HistoryDefaultLimit)

	return &App{
		Store:         store,
		Users:         users,
		Sessions:      sessions,
		Messages:      messages,
		Tokens:        tokens,
		Authenticator: authenticator,
		AuthService:   authService,
		ChatService:   chatService,
		HTTPHandler:   router,
		GRPCServer:    server.NewGRPCServer(log, authenticator, syncServer),
	}, nil
}

// Close stops the gRPC server and releases the store.
func (a *App) Close() error {
	a.GRPCServer.Stop()
	return a.Store.Close()
}
