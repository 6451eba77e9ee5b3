// Package logger настраивает структурированное логирование сервиса.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Setup пересоздаёт логгер с нужным уровнем и форматом (text или json)
func Setup(level, format string) {
	SetOutput(os.Stderr, level, format)
}

// SetOutput то же, что Setup, но пишет в w
func SetOutput(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// ParseLevel переводит строку в slog.Level, по умолчанию info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L возвращает текущий логгер
func L() *slog.Logger {
	return logger
}

func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// With возвращает логгер с дополнительными атрибутами
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}
