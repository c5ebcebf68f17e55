package cliconfig

import (
	"fmt"
	"os"
	"strings"
)

// LoadAPIKey reads the API key from APIKeyFile when no key was given
// directly. An explicit key always wins.
func LoadAPIKey(cfg *Config) error {
	if strings.TrimSpace(cfg.APIKey) != "" || cfg.APIKeyFile == "" {
		return nil
	}

	path := expandHome(cfg.APIKeyFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read api key file: %w", err)
	}
	key := strings.TrimSpace(string(b))
	if key == "" {
		return fmt.Errorf("api key file %s is empty", path)
	}
	cfg.APIKey = key
	return nil
}

// KeyFileTooOpen reports whether the key file is readable by group or others.
func KeyFileTooOpen(path string) bool {
	info, err := os.Stat(expandHome(path))
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o077 != 0
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return h + p[1:]
}
