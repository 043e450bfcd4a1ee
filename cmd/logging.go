package cmd

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

type logOptions struct {
	filename   string
	level      slog.Level
	maxSize    int
	maxBackups int
	maxAge     int
	compress   bool
}

// logOptionsFromConfig resolves the log settings from flags, env and config.
// --verbose wins over log.level.
func logOptionsFromConfig() logOptions {
	opts := logOptions{
		filename:   strings.TrimSpace(viper.GetString(logFilenameKey)),
		level:      parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo),
		maxSize:    viper.GetInt(logMaxSizeKey),
		maxBackups: viper.GetInt(logMaxBackupsKey),
		maxAge:     viper.GetInt(logMaxAgeKey),
		compress:   viper.GetBool(logCompressKey),
	}

	if opts.filename == "" {
		opts.filename = defaultLogFilename
	}

	if viper.GetBool(logVerboseKey) {
		opts.level = slog.LevelDebug
	}

	return opts
}

func (o logOptions) writer() io.Writer {
	return &lumberjack.Logger{
		Filename:   o.filename,
		MaxSize:    o.maxSize,
		MaxBackups: o.maxBackups,
		MaxAge:     o.maxAge,
		Compress:   o.compress,
	}
}

// configureLogger points the default slog logger at a rotating log file.
func configureLogger(opts logOptions) {
	handler := slog.NewTextHandler(opts.writer(), &slog.HandlerOptions{
		AddSource: true,
		Level:     opts.level,
	})

	slog.SetDefault(slog.New(handler))
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))

	switch level {
	case "":
		return defaultLevel
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}
