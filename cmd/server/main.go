package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-sync/infrastructure/httpapi"
	"chat-sync/internal"
	"chat-sync/repositories"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the store, the services and both transports, then blocks until
// a signal or a server failure. Deferred cleanups run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Store, services and transports
	app, err := internal.NewApp(config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		if err := app.Store.Close(); err != nil {
			logger.Error("Unable to close BadgerDB", "error", err)
		}
	}()

	if config.DebugPort > 0 {
		db, err := app.Store.DB()
		if err != nil {
			return exitRuntime, err
		}
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, RecordMapper)
	}

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	// 4. gRPC
	listener, err := net.Listen("tcp", config.GRPCAddress())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.GRPCAddress(), err)
	}
	go func() {
		logger.Info("Starting gRPC server", "address", config.GRPCAddress(), "at", time.Now().UTC())
		for serviceName := range app.GRPCServer.GetServiceInfo() {
			logger.Debug("gRPC exposed service", "name", serviceName)
		}
		if err := app.GRPCServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. HTTP
	httpServer := httpapi.NewServer(config.HTTPAddress(), app.HTTPHandler)
	go func() {
		logger.Info("Starting HTTP server", "address", config.HTTPAddress(), "policy", config.CredentialPolicy)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		app.GRPCServer.Stop()
		_ = httpServer.Close()
		return exitRuntime, err
	}

	// 7. Graceful shutdown: in-flight polls finish, no subscription state to tear down.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	app.GRPCServer.GracefulStop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

// RecordMapper renders chat records in the Badger debug inspector.
func RecordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	record := repositories.DescribeRecord(key, val)
	row.Type = record.Type
	row.Detail = record.Detail
	return row
}

