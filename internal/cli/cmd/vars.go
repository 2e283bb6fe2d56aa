package cmd

import (
	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/config"
)

// Shared state across all commands, populated by the root command's
// persistent pre-run.
var (
	cfg       *config.Config
	zapLogger *zap.Logger

	cfgFile string
	useJSON bool
)

// SetConfig sets the configuration for commands
func SetConfig(c *config.Config) {
	cfg = c
}

func GetConfig() *config.Config {
	return cfg
}

// SetZapLogger sets the logger for commands
func SetZapLogger(log *zap.Logger) {
	zapLogger = log
}

func GetZapLogger() *zap.Logger {
	if zapLogger == nil {
		return zap.NewNop()
	}
	return zapLogger
}
