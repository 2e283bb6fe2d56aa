package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/common"
)

// GetLogger returns the configured logger, creating it if necessary
func GetLogger() (*zap.Logger, error) {
	if zapLogger != nil {
		return zapLogger, nil
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	logger, err := common.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	zapLogger = logger
	return logger, nil
}
