// Package logger builds the process logger: slog text output on the console
// or slog JSON output into a rotating file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log level constants
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Log type constants
const (
	TypeConsole = "console"
	TypeFile    = "file"
)

// Logger is the subset of *slog.Logger the rest of the code depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Settings struct {
	Level      string
	Type       string
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// New creates a logger from settings.
func New(s Settings) (*slog.Logger, error) {
	switch s.Type {
	case TypeConsole, "":
		return NewConsole(os.Stdout, s.Level), nil
	case TypeFile:
		if s.FilePath == "" {
			return nil, fmt.Errorf("file path required for file logger")
		}
		return NewFile(s.Level, s.FilePath, s.MaxSize, s.MaxBackups, s.MaxAge), nil
	default:
		return nil, fmt.Errorf("unsupported log type: %s", s.Type)
	}
}

// NewConsole logs human readable lines to w.
func NewConsole(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// NewFile logs JSON lines to filePath, rotating by size (MB) and age (days).
func NewFile(level, filePath string, maxSize, maxBackups, maxAge int) *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Nop discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func ParseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
