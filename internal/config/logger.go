package config

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger logs to stdout and, when path is set, also to that file.
func InitLogger(path string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		l := slog.New(slog.NewTextHandler(os.Stdout, opts))
		l.Error("failed to open log file", "path", path, "err", err)
		return l
	}
	l := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, f), opts))
	l.Info("logger initialized", "file", path)
	return l
}
