package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/terramesh/roadgrade"
)

// loggingOptions Shared logging flags of all subcommands
type loggingOptions struct {
	LogLevel string `long:"log-level" default:"info" description:"Log level (debug, info, warn, error)"`
	LogFile  string `long:"log-file" description:"Optional rotating log file"`
}

// setupLogging builds the console (and optionally rotating file) logger and
// installs it into the library
func setupLogging(opts loggingOptions) *zap.Logger {
	lvl := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(opts.LogLevel); err == nil {
		lvl = parsed
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	})
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), lvl),
	}

	if opts.LogFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), lvl))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	roadgrade.SetLogger(logger)
	return logger
}
