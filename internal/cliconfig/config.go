package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bft-labs/eventship/pkg/eventship"
)

// Config holds CLI configuration for eventship.
type Config struct {
	Endpoint   string
	APIKey     string
	APIKeyFile string
	Proxy      string
	Debug      bool
	Transport  string

	MaxPostLength int
	QueueSize     int

	ConnectTimeout time.Duration
	Timeout        time.Duration
	FlushInterval  time.Duration

	StateDir string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Transport:      eventship.DefaultTransport,
		MaxPostLength:  eventship.DefaultMaxPostLength,
		QueueSize:      eventship.DefaultQueueSize,
		ConnectTimeout: eventship.DefaultConnectTimeout,
		Timeout:        eventship.DefaultTimeout,
		StateDir:       defaultStateDir(),
	}
}

func defaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".eventship", "state")
	}
	return ""
}

// Validate checks the configuration for errors and normalizes values.
// The API key file, if any, must already have been loaded with LoadAPIKey.
func (c *Config) Validate() error {
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)

	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api-key is required (or api-key-file)")
	}
	if c.MaxPostLength <= 0 {
		return fmt.Errorf("max post length must be positive")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive")
	}
	if c.ConnectTimeout <= 0 || c.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// ClientConfig converts the CLI configuration into a client configuration.
func (c Config) ClientConfig() eventship.Config {
	return eventship.Config{
		Endpoint:       c.Endpoint,
		APIKey:         c.APIKey,
		Transport:      c.Transport,
		Proxy:          c.Proxy,
		Debug:          c.Debug,
		MaxPostLength:  c.MaxPostLength,
		QueueSize:      c.QueueSize,
		ConnectTimeout: c.ConnectTimeout,
		Timeout:        c.Timeout,
		FlushInterval:  c.FlushInterval,
		StateDir:       c.StateDir,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration sets a duration if positive and flag not changed.
func (s *configSetter) setDuration(flag string, value time.Duration, dst *time.Duration) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// parseDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) parseDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
