package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Endpoint       string `toml:"endpoint"`
	APIKey         string `toml:"api_key"`
	APIKeyFile     string `toml:"api_key_file"`
	Proxy          string `toml:"proxy"`
	Debug          *bool  `toml:"debug"`
	Transport      string `toml:"transport"`
	MaxPostLength  int    `toml:"max_post_length"`
	QueueSize      int    `toml:"queue_size"`
	ConnectTimeout string `toml:"connect_timeout"`
	Timeout        string `toml:"timeout"`
	FlushInterval  string `toml:"flush_interval"`
	StateDir       string `toml:"state_dir"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.eventship/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".eventship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("api-key-file", fc.APIKeyFile, &cfg.APIKeyFile)
	s.setString("proxy", fc.Proxy, &cfg.Proxy)
	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)

	if err := s.parseDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.parseDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := s.parseDuration("flush-interval", fc.FlushInterval, &cfg.FlushInterval); err != nil {
		return err
	}

	s.setInt("max-post-length", fc.MaxPostLength, &cfg.MaxPostLength)
	s.setInt("queue-size", fc.QueueSize, &cfg.QueueSize)

	s.setBool("debug", fc.Debug, &cfg.Debug)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
