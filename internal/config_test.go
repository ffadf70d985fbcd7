package internal

import (
	"testing"

	"chat-sync/services"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		BadgerFilepath:      "/tmp/chat",
		CredentialPolicy:    services.PolicyPassword,
		HistoryDefaultLimit: 50,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "on disk with a path", mutate: func(c *Config) {}},
		{name: "in memory without a path", mutate: func(c *Config) { c.BadgerFilepath = ""; c.BadgerInMemory = true }},
		{name: "on disk without a path", mutate: func(c *Config) { c.BadgerFilepath = "" }, wantErr: true},
		{name: "unknown policy", mutate: func(c *Config) { c.CredentialPolicy = "ldap" }, wantErr: true},
		{name: "zero history limit", mutate: func(c *Config) { c.HistoryDefaultLimit = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr {
				req.Error(err)
				return
			}
			req.NoError(err)
		})
	}
}

func TestConfig_Origins(t *testing.T) {
	req := require.New(t)
	req.Equal([]string{"http://a", "http://b"}, Config{AllowedOrigins: " http://a, ,http://b "}.Origins())
}
