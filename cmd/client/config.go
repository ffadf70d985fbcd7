package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"http://localhost:8080"`
	Handle    string `envconfig:"CHAT_HANDLE" required:"true"`
	Password  string `envconfig:"CHAT_PASSWORD"`
	// CHAT_PEER is the handle of the other participant
	Peer         string        `envconfig:"CHAT_PEER" required:"true"`
	PollInterval time.Duration `envconfig:"CHAT_POLL_INTERVAL" default:"2s"`
	HistoryLimit int           `envconfig:"CHAT_HISTORY_LIMIT" default:"50"`
	// CHAT_COLOURS enables colorized output for incoming messages
	Colours  bool   `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
