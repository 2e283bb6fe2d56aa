package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// CLIPRECALL_MONITOR_POLL_INTERVAL_MS.
const EnvPrefix = "CLIPRECALL"

// Config holds all application configuration
type Config struct {
	History HistoryConfig `yaml:"history" mapstructure:"history" json:"history"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor" json:"monitor"`
	Log     LogConfig     `yaml:"log" mapstructure:"log" json:"log"`
	IPC     IPCConfig     `yaml:"ipc" mapstructure:"ipc" json:"ipc"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage" json:"storage"`

	// Paths is resolved at load time and never serialised.
	Paths *ConfigPaths `yaml:"-" mapstructure:"-" json:"-"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity" json:"capacity"`
}

// MonitorConfig holds clipboard polling options. Durations are in
// milliseconds.
type MonitorConfig struct {
	PollIntervalMs int    `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms" json:"poll_interval_ms"`
	DedupWindowMs  int    `yaml:"dedup_window_ms" mapstructure:"dedup_window_ms" json:"dedup_window_ms"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms" mapstructure:"read_timeout_ms" json:"read_timeout_ms"`
	PreviewLength  int    `yaml:"preview_length" mapstructure:"preview_length" json:"preview_length"`
	Backend        string `yaml:"backend" mapstructure:"backend" json:"backend"` // auto, system, text, headless or memory
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" json:"level"`
	Format string `yaml:"format" mapstructure:"format" json:"format"` // auto, console or json
	File   string `yaml:"file" mapstructure:"file" json:"file"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path" mapstructure:"socket_path" json:"socket_path"`
}

// StorageConfig controls the optional on-disk session archive.
type StorageConfig struct {
	Enabled           bool   `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	DBPath            string `yaml:"db_path" mapstructure:"db_path" json:"db_path"`
	CompressThreshold int    `yaml:"compress_threshold" mapstructure:"compress_threshold" json:"compress_threshold"`
}

func (m MonitorConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalMs) * time.Millisecond
}

func (m MonitorConfig) DedupWindow() time.Duration {
	return time.Duration(m.DedupWindowMs) * time.Millisecond
}

func (m MonitorConfig) ReadTimeout() time.Duration {
	return time.Duration(m.ReadTimeoutMs) * time.Millisecond
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	paths, _ := GetConfigPaths()

	return &Config{
		History: HistoryConfig{
			Capacity: 100,
		},
		Monitor: MonitorConfig{
			PollIntervalMs: 500,
			DedupWindowMs:  1000,
			ReadTimeoutMs:  2000,
			PreviewLength:  100,
			Backend:        "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Storage: StorageConfig{
			Enabled:           false,
			CompressThreshold: 1024,
		},
		Paths: paths,
	}
}

// SocketPath returns the configured IPC socket, falling back to the
// platform default.
func (c *Config) SocketPath() string {
	if c.IPC.SocketPath != "" {
		return c.IPC.SocketPath
	}
	if c.Paths != nil {
		return c.Paths.SocketPath
	}
	return filepath.Join(os.TempDir(), "cliprecall.sock")
}

// DBPath returns the configured archive database, falling back to the
// platform default.
func (c *Config) DBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	if c.Paths != nil {
		return c.Paths.DBFile
	}
	return filepath.Join(os.TempDir(), "cliprecall.db")
}

// Load reads configuration from configPath (or the default location when
// empty). A missing file is not an error.
func Load(configPath string) (*Config, error) {
	return LoadWithViper(viper.New(), configPath)
}

// LoadWithViper is Load on a caller-supplied viper instance, so command-line
// flags bound to v take part. Precedence, lowest first: defaults, config
// file, CLIPRECALL_* environment variables, bound flags.
func LoadWithViper(v *viper.Viper, configPath string) (*Config, error) {
	def := DefaultConfig()
	setDefaults(v, def)

	if configPath == "" && def.Paths != nil {
		configPath = def.Paths.ConfigFile
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Paths = def.Paths

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("history.capacity", c.History.Capacity)
	v.SetDefault("monitor.poll_interval_ms", c.Monitor.PollIntervalMs)
	v.SetDefault("monitor.dedup_window_ms", c.Monitor.DedupWindowMs)
	v.SetDefault("monitor.read_timeout_ms", c.Monitor.ReadTimeoutMs)
	v.SetDefault("monitor.preview_length", c.Monitor.PreviewLength)
	v.SetDefault("monitor.backend", c.Monitor.Backend)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("ipc.socket_path", c.IPC.SocketPath)
	v.SetDefault("storage.enabled", c.Storage.Enabled)
	v.SetDefault("storage.db_path", c.Storage.DBPath)
	v.SetDefault("storage.compress_threshold", c.Storage.CompressThreshold)
}

// Save writes the configuration as YAML.
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validBackends = map[string]bool{
	"auto": true, "system": true, "text": true, "headless": true, "memory": true,
}

var validFormats = map[string]bool{
	"auto": true, "console": true, "json": true,
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.History.Capacity <= 0 {
		err = multierr.Append(err, fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity))
	}
	if c.Monitor.PollIntervalMs <= 0 {
		err = multierr.Append(err, fmt.Errorf("monitor.poll_interval_ms must be positive, got %d", c.Monitor.PollIntervalMs))
	}
	if c.Monitor.DedupWindowMs <= 0 {
		err = multierr.Append(err, fmt.Errorf("monitor.dedup_window_ms must be positive, got %d", c.Monitor.DedupWindowMs))
	}
	if c.Monitor.ReadTimeoutMs <= 0 {
		err = multierr.Append(err, fmt.Errorf("monitor.read_timeout_ms must be positive, got %d", c.Monitor.ReadTimeoutMs))
	}
	if c.Monitor.PreviewLength <= 0 {
		err = multierr.Append(err, fmt.Errorf("monitor.preview_length must be positive, got %d", c.Monitor.PreviewLength))
	}
	if !validBackends[c.Monitor.Backend] {
		err = multierr.Append(err, fmt.Errorf("monitor.backend %q is not one of auto, system, text, headless, memory", c.Monitor.Backend))
	}
	if _, perr := zapcore.ParseLevel(c.Log.Level); perr != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", perr))
	}
	if !validFormats[c.Log.Format] {
		err = multierr.Append(err, fmt.Errorf("log.format %q is not one of auto, console, json", c.Log.Format))
	}
	if c.Storage.CompressThreshold < 0 {
		err = multierr.Append(err, fmt.Errorf("storage.compress_threshold must not be negative, got %d", c.Storage.CompressThreshold))
	}
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
