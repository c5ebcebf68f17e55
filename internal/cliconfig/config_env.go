package cliconfig

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "EVENTSHIP_"

// EnvConfig is the environment view of Config.
type EnvConfig struct {
	Endpoint       string        `env:"ENDPOINT"`
	APIKey         string        `env:"API_KEY"`
	APIKeyFile     string        `env:"API_KEY_FILE"`
	Proxy          string        `env:"PROXY"`
	Debug          *bool         `env:"DEBUG"`
	Transport      string        `env:"TRANSPORT"`
	MaxPostLength  int           `env:"MAX_POST_LENGTH"`
	QueueSize      int           `env:"QUEUE_SIZE"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`
	Timeout        time.Duration `env:"TIMEOUT"`
	FlushInterval  time.Duration `env:"FLUSH_INTERVAL"`
	StateDir       string        `env:"STATE_DIR"`
}

// ApplyEnvConfig applies configuration from environment variables (EVENTSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	var ec EnvConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	s := newConfigSetter(changed)

	s.setString("endpoint", ec.Endpoint, &cfg.Endpoint)
	s.setString("api-key", ec.APIKey, &cfg.APIKey)
	s.setString("api-key-file", ec.APIKeyFile, &cfg.APIKeyFile)
	s.setString("proxy", ec.Proxy, &cfg.Proxy)
	s.setString("transport", ec.Transport, &cfg.Transport)
	s.setString("state-dir", ec.StateDir, &cfg.StateDir)

	s.setDuration("connect-timeout", ec.ConnectTimeout, &cfg.ConnectTimeout)
	s.setDuration("timeout", ec.Timeout, &cfg.Timeout)
	s.setDuration("flush-interval", ec.FlushInterval, &cfg.FlushInterval)

	s.setInt("max-post-length", ec.MaxPostLength, &cfg.MaxPostLength)
	s.setInt("queue-size", ec.QueueSize, &cfg.QueueSize)

	s.setBool("debug", ec.Debug, &cfg.Debug)

	return nil
}
