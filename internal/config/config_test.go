package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("CLIPRECALL_CONFIG_DIR", filepath.Join(tempDir, "config"))
	t.Setenv("CLIPRECALL_DATA_DIR", filepath.Join(tempDir, "data"))
	t.Setenv("CLIPRECALL_RUNTIME_DIR", filepath.Join(tempDir, "run"))
	return tempDir
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempDir := isolate(t)

	cfg, err := Load(filepath.Join(tempDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	def := DefaultConfig()
	if cfg.History.Capacity != 100 {
		t.Errorf("Expected History.Capacity 100, got %d", cfg.History.Capacity)
	}
	if !reflect.DeepEqual(cfg.Monitor, def.Monitor) {
		t.Errorf("Expected Monitor %+v, got %+v", def.Monitor, cfg.Monitor)
	}
	if cfg.Monitor.PollInterval().Milliseconds() != 500 {
		t.Errorf("Expected poll interval 500ms, got %v", cfg.Monitor.PollInterval())
	}
	if got, want := cfg.SocketPath(), filepath.Join(tempDir, "run", "cliprecall.sock"); got != want {
		t.Errorf("Expected socket path %s, got %s", want, got)
	}
	if got, want := cfg.DBPath(), filepath.Join(tempDir, "data", "cliprecall.db"); got != want {
		t.Errorf("Expected db path %s, got %s", want, got)
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := isolate(t)
	configPath := filepath.Join(tempDir, "config.yaml")

	content := `
history:
  capacity: 25
monitor:
  poll_interval_ms: 250
  backend: memory
log:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.History.Capacity != 25 {
		t.Errorf("Expected capacity 25, got %d", cfg.History.Capacity)
	}
	if cfg.Monitor.PollIntervalMs != 250 || cfg.Monitor.Backend != "memory" {
		t.Errorf("Unexpected monitor config %+v", cfg.Monitor)
	}
	if cfg.Monitor.DedupWindowMs != 1000 {
		t.Errorf("Unset keys should keep defaults, got dedup window %d", cfg.Monitor.DedupWindowMs)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tempDir := isolate(t)
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("history:\n  capacity: 25\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("CLIPRECALL_HISTORY_CAPACITY", "7")
	t.Setenv("CLIPRECALL_MONITOR_BACKEND", "headless")
	t.Setenv("CLIPRECALL_STORAGE_ENABLED", "true")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.History.Capacity != 7 {
		t.Errorf("Expected env to override file, got capacity %d", cfg.History.Capacity)
	}
	if cfg.Monitor.Backend != "headless" {
		t.Errorf("Expected backend headless, got %s", cfg.Monitor.Backend)
	}
	if !cfg.Storage.Enabled {
		t.Error("Expected storage enabled from env")
	}
}

func TestLoadFlagsWin(t *testing.T) {
	tempDir := isolate(t)
	t.Setenv("CLIPRECALL_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	if err := flags.Parse([]string{"--log-level=error"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	v := viper.New()
	if err := v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		t.Fatalf("BindPFlag() failed: %v", err)
	}

	cfg, err := LoadWithViper(v, filepath.Join(tempDir, "none.yaml"))
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Expected flag to win, got %s", cfg.Log.Level)
	}
}

func TestSave(t *testing.T) {
	tempDir := isolate(t)
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	testConfig := DefaultConfig()
	testConfig.Paths = nil
	testConfig.History.Capacity = 42
	testConfig.IPC.SocketPath = "/tmp/custom.sock"

	if err := testConfig.Save(configPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	file, err := os.Open(configPath)
	if err != nil {
		t.Fatalf("Failed to open saved config: %v", err)
	}
	defer file.Close()

	var loadedConfig Config
	if err := yaml.NewDecoder(file).Decode(&loadedConfig); err != nil {
		t.Fatalf("Failed to decode saved config: %v", err)
	}
	if !reflect.DeepEqual(testConfig, &loadedConfig) {
		t.Errorf("Saved config doesn't match original. Got %+v, want %+v", loadedConfig, testConfig)
	}

	reloaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if reloaded.SocketPath() != "/tmp/custom.sock" {
		t.Errorf("Expected socket path from file, got %s", reloaded.SocketPath())
	}
}

func TestLoadConfigErrorHandling(t *testing.T) {
	tempDir := isolate(t)
	configPath := filepath.Join(tempDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("history: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("Load() should fail with invalid YAML")
	}

	if err := os.WriteFile(configPath, []byte("history:\n  capacity: 0\nlog:\n  level: loud\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should fail validation")
	}
	for _, want := range []string{"history.capacity", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got %v", want, err)
		}
	}
}

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero dedup window", func(c *Config) { c.Monitor.DedupWindowMs = 0 }, true},
		{"negative dedup window", func(c *Config) { c.Monitor.DedupWindowMs = -1 }, true},
		{"zero poll interval", func(c *Config) { c.Monitor.PollIntervalMs = 0 }, true},
		{"zero read timeout", func(c *Config) { c.Monitor.ReadTimeoutMs = 0 }, true},
		{"unknown backend", func(c *Config) { c.Monitor.Backend = "x11" }, true},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"zero preview", func(c *Config) { c.Monitor.PreviewLength = 0 }, true},
		{"negative threshold", func(c *Config) { c.Storage.CompressThreshold = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	tempDir := isolate(t)

	paths, err := GetConfigPaths()
	if err != nil {
		t.Fatalf("GetConfigPaths() failed: %v", err)
	}
	if paths.ConfigFile != filepath.Join(tempDir, "config", "config.yaml") {
		t.Errorf("Unexpected config file %s", paths.ConfigFile)
	}
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() failed: %v", err)
	}
	for _, dir := range []string{paths.BaseDir, paths.DataDir, paths.LogDir, paths.RuntimeDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to exist", dir)
		}
	}
}
