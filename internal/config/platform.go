package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigPaths holds the filesystem locations the application uses.
type ConfigPaths struct {
	BaseDir    string // directory holding the config file
	ConfigFile string // default config file path
	DataDir    string // application data
	DBFile     string // session archive database
	LogDir     string // log files
	RuntimeDir string // sockets and other per-session files
	SocketPath string // IPC control socket
}

// GetConfigPaths returns the platform-specific paths. CLIPRECALL_CONFIG_DIR,
// CLIPRECALL_DATA_DIR and CLIPRECALL_RUNTIME_DIR override the defaults.
// No directories are created; see EnsureDirs.
func GetConfigPaths() (*ConfigPaths, error) {
	baseDir := os.Getenv("CLIPRECALL_CONFIG_DIR")
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		switch runtime.GOOS {
		case "windows":
			baseDir = filepath.Join(configDir, "ClipRecall")
		case "darwin":
			baseDir = filepath.Join(configDir, "com.berrythewa.cliprecall")
		default:
			baseDir = filepath.Join(configDir, "cliprecall")
		}
	}

	dataDir := os.Getenv("CLIPRECALL_DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		switch runtime.GOOS {
		case "windows":
			if appData, err := os.UserCacheDir(); err == nil {
				dataDir = filepath.Join(appData, "ClipRecall", "Data")
			} else {
				dataDir = filepath.Join(homeDir, "AppData", "Local", "ClipRecall")
			}
		case "darwin":
			dataDir = filepath.Join(homeDir, "Library", "Application Support", "ClipRecall")
		default:
			if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
				dataDir = filepath.Join(xdg, "cliprecall")
			} else {
				dataDir = filepath.Join(homeDir, ".local", "share", "cliprecall")
			}
		}
	}

	runtimeDir := os.Getenv("CLIPRECALL_RUNTIME_DIR")
	if runtimeDir == "" {
		if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" && runtime.GOOS == "linux" {
			runtimeDir = filepath.Join(xdg, "cliprecall")
		} else {
			runtimeDir = filepath.Join(dataDir, "run")
		}
	}

	return &ConfigPaths{
		BaseDir:    baseDir,
		ConfigFile: filepath.Join(baseDir, "config.yaml"),
		DataDir:    dataDir,
		DBFile:     filepath.Join(dataDir, "cliprecall.db"),
		LogDir:     filepath.Join(dataDir, "logs"),
		RuntimeDir: runtimeDir,
		SocketPath: filepath.Join(runtimeDir, "cliprecall.sock"),
	}, nil
}

// EnsureDirs creates every directory in p.
func (p *ConfigPaths) EnsureDirs() error {
	for _, dir := range []string{p.BaseDir, p.DataDir, p.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.MkdirAll(p.RuntimeDir, 0700)
}
