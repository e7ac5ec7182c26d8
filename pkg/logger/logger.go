// Package logger builds the process-wide zap logger.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

// New constructs a JSON zap logger at the given level. An empty or unknown
// level falls back to info.
func New(level string) (*zap.Logger, error) {
	atomic := zap.NewAtomicLevel()
	if err := atomic.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		_ = atomic.UnmarshalText([]byte(defaultLevel))
	}

	cfg := zap.Config{
		Level:    atomic,
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:    "message",
			TimeKey:       "timestamp",
			LevelKey:      "level",
			NameKey:       "logger",
			CallerKey:     "caller",
			StacktraceKey: "stacktrace",
			EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
			EncodeLevel:   zapcore.LowercaseLevelEncoder,
			EncodeCaller:  zapcore.ShortCallerEncoder,
		},
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return cfg.Build()
}

// Init builds the logger from LOG_LEVEL, installs it as the zap global and
// routes the standard library log package through it. The returned func
// restores the previous globals and flushes buffered entries.
func Init(level string) (*zap.Logger, func()) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	log, err := New(level)
	if err != nil {
		log = zap.NewExample()
		log.Warn("falling back to example logger", zap.Error(err))
	}

	restoreGlobals := zap.ReplaceGlobals(log)
	restoreStd := zap.RedirectStdLog(log)
	return log, func() {
		_ = log.Sync()
		restoreStd()
		restoreGlobals()
	}
}
