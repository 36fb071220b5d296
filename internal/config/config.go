// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server configures the chat backend daemon.
type Server struct {
	Addr   string `env:"SCOPECHAT_ADDR" envDefault:"127.0.0.1:3000"`
	DBPath string `env:"SCOPECHAT_DB_PATH" envDefault:"scopechat.db"`
}

// Client configures the terminal client.
type Client struct {
	ServerURL    string        `env:"SCOPECHAT_SERVER_URL" envDefault:"http://127.0.0.1:3000"`
	Username     string        `env:"SCOPECHAT_USERNAME"`
	Password     string        `env:"SCOPECHAT_PASSWORD"`
	HistoryLimit int           `env:"SCOPECHAT_HISTORY_LIMIT" envDefault:"100"`
	Timeout      time.Duration `env:"SCOPECHAT_TIMEOUT" envDefault:"10s"`
	// DebugLog is a file path; when set, client logs go there instead
	// of being discarded. Stderr would corrupt the terminal UI.
	DebugLog string `env:"SCOPECHAT_DEBUG_LOG"`
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func LoadClient() (Client, error) {
	var cfg Client
	if err := env.Parse(&cfg); err != nil {
		return Client{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
