package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Endpoint:      "https://file.example.com",
				APIKey:        "file-key",
				Timeout:       "5s",
				MaxPostLength: 4096,
				Debug:         &trueVal,
			},
			changed: map[string]bool{},
			expected: Config{
				Endpoint:      "https://file.example.com",
				APIKey:        "file-key",
				Timeout:       5 * time.Second,
				MaxPostLength: 4096,
				Debug:         true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Endpoint: "https://file.example.com",
				APIKey:   "file-key",
			},
			changed: map[string]bool{"endpoint": true},
			initial: Config{
				Endpoint: "https://flag.example.com",
				APIKey:   "flag-key",
			},
			expected: Config{
				Endpoint: "https://flag.example.com",
				APIKey:   "file-key",
			},
		},
		{
			name: "handles all field types correctly",
			fileConfig: FileConfig{
				Endpoint:       "https://api.example.com",
				APIKey:         "secret",
				APIKeyFile:     "/etc/eventship/key",
				Proxy:          "socks5h://proxy:1080",
				Debug:          &falseVal,
				Transport:      "noop",
				MaxPostLength:  1024,
				QueueSize:      10,
				ConnectTimeout: "1s",
				Timeout:        "2s",
				FlushInterval:  "30s",
				StateDir:       "/state",
			},
			changed: map[string]bool{},
			initial: Config{Debug: true},
			expected: Config{
				Endpoint:       "https://api.example.com",
				APIKey:         "secret",
				APIKeyFile:     "/etc/eventship/key",
				Proxy:          "socks5h://proxy:1080",
				Debug:          false,
				Transport:      "noop",
				MaxPostLength:  1024,
				QueueSize:      10,
				ConnectTimeout: time.Second,
				Timeout:        2 * time.Second,
				FlushInterval:  30 * time.Second,
				StateDir:       "/state",
			},
		},
		{
			name:       "zero values leave defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{FlushInterval: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "skips invalid duration when flag is set",
			fileConfig: FileConfig{Timeout: "bogus"},
			changed:    map[string]bool{"timeout": true},
			initial:    Config{Timeout: time.Second},
			expected:   Config{Timeout: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
endpoint = "https://api.example.com/"
api_key = "k"
transport = "async"
timeout = "15s"
queue_size = 20
debug = true
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Endpoint != "https://api.example.com/" {
		t.Errorf("Endpoint = %v, want https://api.example.com/", fc.Endpoint)
	}
	if fc.APIKey != "k" {
		t.Errorf("APIKey = %v, want k", fc.APIKey)
	}
	if fc.Transport != "async" {
		t.Errorf("Transport = %v, want async", fc.Transport)
	}
	if fc.Timeout != "15s" {
		t.Errorf("Timeout = %v, want 15s", fc.Timeout)
	}
	if fc.QueueSize != 20 {
		t.Errorf("QueueSize = %v, want 20", fc.QueueSize)
	}
	if fc.Debug == nil || *fc.Debug != true {
		t.Errorf("Debug = %v, want true", fc.Debug)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
endpoint = "https://api.example.com"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".eventship") {
		t.Errorf("DefaultConfigPath() = %v, should contain .eventship", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
