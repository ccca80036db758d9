package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanverite/wildlife-sightings/internal/config"
)

// newLogger builds a JSON production logger or a console development logger.
func newLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
