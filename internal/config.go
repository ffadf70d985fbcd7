package internal

import (
	"fmt"
	"strings"
	"time"

	"chat-sync/services"
)

type Config struct {
	Host                string        `env:"HOST,default=0.0.0.0"`
	HTTPPort            int           `env:"HTTP_PORT,default=8080"`
	GRPCPort            int           `env:"GRPC_PORT,default=9090"`
	DebugPort           int           `env:"DEBUG_PORT,default=0"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH"`
	BadgerInMemory      bool          `env:"BADGER_IN_MEMORY,default=false"`
	LogLevel            string        `env:"LOG_LEVEL,default=INFO"`
	SessionDuration     time.Duration `env:"SESSION_DURATION,default=168h"`
	CredentialPolicy    string        `env:"CREDENTIAL_POLICY,default=password"`
	HistoryDefaultLimit int           `env:"HISTORY_DEFAULT_LIMIT,default=50"`
	AllowedOrigins      string        `env:"ALLOWED_ORIGINS,default=*"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func (c Config) Validate() error {
	switch c.CredentialPolicy {
	case services.PolicyPassword, services.PolicyTrustOnFirstUse:
	default:
		return fmt.Errorf("CREDENTIAL_POLICY must be %q or %q, got %q",
			services.PolicyPassword, services.PolicyTrustOnFirstUse, c.CredentialPolicy)
	}
	if !c.BadgerInMemory && strings.TrimSpace(c.BadgerFilepath) == "" {
		return fmt.Errorf("BADGER_FILEPATH is required unless BADGER_IN_MEMORY is set")
	}
	if c.HistoryDefaultLimit < 1 {
		return fmt.Errorf("HISTORY_DEFAULT_LIMIT must be positive, got %d", c.HistoryDefaultLimit)
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

func (c Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}
