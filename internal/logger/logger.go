// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger wraps zerolog for the console.
//
// The console owns the terminal, so log output never goes to stdout or
// stderr: it is written as JSON to a size-rotated file under ~/.riskapi.
package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a file logger.
type Options struct {
	// Path is the log file. Parent directories are created as needed.
	Path string
	// Level is a zerolog level name; "debug" when verbose output is wanted.
	Level string
	// Role tags every entry, e.g. "console".
	Role string
}

// Logger embeds zerolog.Logger and remembers the writer it owns.
type Logger struct {
	zerolog.Logger
	closer io.Closer
}

// New builds a logger writing to a rotating file. Every entry carries the
// role, a per-process session id and a timestamp.
func New(opts Options) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7,  // days
		Compress:   true,
	}

	zl := zerolog.New(rotator).Level(level).With().
		Str("role", opts.Role).
		Str("session", uuid.NewString()).
		Timestamp().
		Logger()

	return &Logger{Logger: zl, closer: rotator}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Close flushes and closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Child returns a logger carrying an extra component field.
func (l *Logger) Child(component string) *Logger {
	return &Logger{Logger: l.With().Str("component", component).Logger()}
}

// WithContext stores l in ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx. zerolog falls back to a
// disabled logger when none was attached, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{Logger: *zerolog.Ctx(ctx)}
}
