// Copyright (C) 2025-2026, Restaking Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logutil implements various log utilities.
package logutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var DefaultLogLevel = zapcore.InfoLevel

// GetDefaultZapLoggerConfig returns a new default zap logger configuration.
func GetDefaultZapLoggerConfig() zap.Config {
	return zap.Config{
		Level: zap.NewAtomicLevelAt(DefaultLogLevel),

		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},

		Encoding: "json",

		// copied from "zap.NewProductionEncoderConfig" with some updates
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},

		// Use "/dev/null" to discard all
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// GetDefaultZapLogger returns a new default logger.
func GetDefaultZapLogger() (*zap.Logger, error) {
	lcfg := GetDefaultZapLoggerConfig()
	return lcfg.Build()
}

// GetZapLogger builds a logger at [level] that writes to stderr and,
// if [logFile] is non-empty, also appends to that file. Fatal paths
// log full context to the file sink before the process terminates.
func GetZapLogger(level string, logFile string) (*zap.Logger, error) {
	lcfg := GetDefaultZapLoggerConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	lcfg.Level = zap.NewAtomicLevelAt(lvl)
	if logFile != "" {
		lcfg.OutputPaths = append(lcfg.OutputPaths, logFile)
		lcfg.ErrorOutputPaths = append(lcfg.ErrorOutputPaths, logFile)
	}
	return lcfg.Build()
}
