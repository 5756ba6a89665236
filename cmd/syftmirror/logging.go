package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/syftmirror/internal/config"
	"github.com/openmined/syftmirror/internal/utils"
)

const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// setupLogging sends every record to the console and appends it to the log
// file. The returned func flushes and closes the file.
func setupLogging(cfg *config.Config) (*slog.Logger, func(), error) {
	return setupLoggingTo(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()), cfg)
}

func setupLoggingTo(console io.Writer, color bool, cfg *config.Config) (*slog.Logger, func(), error) {
	if err := utils.EnsureParent(cfg.LogFile); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// append, the log is kept across runs
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := cfg.SlogLevel()
	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      level,
		TimeFormat: logTimeFormat,
		NoColor:    !color,
	})

	logInterceptor := utils.NewLogInterceptor(file)
	fileHandler := slog.NewTextHandler(logInterceptor, &slog.HandlerOptions{
		Level: level,
		// Do not include time as it is added by the log interceptor.
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	logger := slog.New(utils.NewMultiLogHandler(consoleHandler, fileHandler))
	slog.SetDefault(logger)

	closeLog := func() {
		_ = logInterceptor.Close()
		_ = file.Close()
	}
	return logger, closeLog, nil
}
