package app

import (
	"os"

	"commute-route-service/internal/config"
	"commute-route-service/internal/logx"
)

// NewLogger returns the JSON stdout logger at the configured level.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.NewJSON(os.Stdout, cfg.LogLevel)
}
