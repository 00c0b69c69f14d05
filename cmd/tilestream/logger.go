package main

import (
	"log/slog"

	"github.com/eak1mov/go-tilestream/config"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

func newLogger(cfg config.Logger) (*zap.Logger, error) {
	developmentConfig := zap.NewDevelopmentConfig()
	developmentConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	developmentConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	developmentConfig.Level = zap.NewAtomicLevelAt(level)

	return developmentConfig.Build()
}

// slogger bridges the zap logger into the slog API taken by the library packages.
func slogger(logger *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(logger.Core()))
}
