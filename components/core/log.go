package core

import (
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// LogInf logs informational events.
	LogInf = log.New(log.Writer(), "inf:", log.LstdFlags)
	// LogWrn logs warning events.
	LogWrn = log.New(log.Writer(), "wrn:", log.LstdFlags)
	// LogErr logs error events.
	LogErr = log.New(log.Writer(), "err:", log.LstdFlags)

	loggerMu sync.Mutex
	logger   = zap.NewNop()
)

// LogParams represents various logging options.
type LogParams struct {
	// Path is a log file path, stderr is used if empty.
	Path string

	// Level is a minimal logging level: debug, info, warn, error.
	Level string
}

// SetupLogger builds the zap logger and redirects LogInf, LogWrn and LogErr to it.
func SetupLogger(params LogParams) error {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableStacktrace = true

	if params.Path != "" {
		config.OutputPaths = []string{params.Path}
		config.ErrorOutputPaths = []string{params.Path}
	}

	if params.Level != "" {
		level, err := zapcore.ParseLevel(params.Level)
		if err != nil {
			return err
		}

		config.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := config.Build()
	if err != nil {
		return err
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()

	logger = l

	redirect(LogInf, l, zapcore.InfoLevel)
	redirect(LogWrn, l, zapcore.WarnLevel)
	redirect(LogErr, l, zapcore.ErrorLevel)

	return nil
}

// Logger returns the underlying structured logger.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	return logger
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	// Syncing stderr fails on some platforms, see https://github.com/uber-go/zap/issues/880.
	if err := Logger().Sync(); err != nil && err.Error() != "sync /dev/stderr: invalid argument" {
		LogErr.Printf("logger: failed to sync: %v\n", err)
	}
}

func redirect(dst *log.Logger, l *zap.Logger, level zapcore.Level) {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		return
	}

	dst.SetOutput(std.Writer())
	dst.SetPrefix("")
	dst.SetFlags(0)
}
