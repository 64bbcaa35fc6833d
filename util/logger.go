package util

import (
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logLevelFromEnv accepts either a numeric zap level ("-1", "0") or a level
// name ("debug", "warn"). Anything else falls back to info.
func logLevelFromEnv() zapcore.Level {
	logLevelEnv := os.Getenv("LOG_LEVEL")
	if logLevelInt, err := strconv.Atoi(logLevelEnv); err == nil {
		return zapcore.Level(logLevelInt)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logLevelEnv)); err == nil && logLevelEnv != "" {
		return level
	}
	return zapcore.InfoLevel
}

func initLogger(serviceName string, outputPaths []string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(logLevelFromEnv())
	zapCfg.EncoderConfig.CallerKey = "ln"
	zapCfg.EncoderConfig.FunctionKey = ""
	zapCfg.EncoderConfig.LevelKey = "severity"
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	if len(outputPaths) > 0 {
		zapCfg.OutputPaths = outputPaths
	}
	if serviceName != "" {
		zapCfg.InitialFields = map[string]any{"service": serviceName}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// NewLogger builds the production JSON logger, writing to stdout unless
// outputPaths are given, and installs it as the zap global.
func NewLogger(serviceName string, outputPaths ...string) (*zap.Logger, func()) {
	logger, err := initLogger(serviceName, outputPaths)
	if err != nil {
		log.Fatalf("fail to init logger, error: %v", err)
	}

	undo := zap.ReplaceGlobals(logger)

	return logger, func() {
		undo()
		_ = logger.Sync()
	}
}
