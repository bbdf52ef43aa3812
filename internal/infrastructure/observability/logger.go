package observability

import (
	"fmt"

	"ideas-backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a JSON logger in staging/production and a console logger in
// development. The returned level can be changed at runtime.
func NewLogger(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	var zapCfg zap.Config
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build(zap.Fields(
		zap.String("service", cfg.Observability.ServiceName),
		zap.String("environment", string(cfg.Environment)),
	))
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, zapCfg.Level, nil
}

// ParseLevel parses a level name, defaulting to info when empty.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// LevelUpdater returns a config callback that applies log level changes.
func LevelUpdater(level zap.AtomicLevel, logger *zap.Logger) func(*config.Config) {
	return func(cfg *config.Config) {
		newLevel, err := ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warn("Ignoring invalid log level", zap.String("log_level", cfg.LogLevel))
			return
		}
		if level.Level() != newLevel {
			level.SetLevel(newLevel)
			logger.Info("Log level changed", zap.String("log_level", newLevel.String()))
		}
	}
}
