package app

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/northfleet/assetsync/pkg/logging"
)

// NewLogger creates the application logger. Level precedence:
//  1. --debug flag
//  2. LOG_LEVEL environment variable
//  3. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if config.LogFormat == "json" {
		logger = logging.NewJSON(os.Stderr)
	} else {
		logger = logging.NewConsole()
	}
	logger = logger.Level(level)

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	logging.SetDefault(logger)
	return logger
}

func determineLogLevel(config *Config) zerolog.Level {
	if config.Debug {
		return zerolog.DebugLevel
	}
	if config.LogLevel != "" {
		if level, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			return level
		}
	}
	return zerolog.InfoLevel
}
