// Package logger builds the process logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0644

type Build struct {
	writer io.Writer
	path   string
	level  string
	format string
}

func New() *Build {
	return &Build{writer: os.Stderr, level: "info", format: "console"}
}

// FromPath appends log lines to the file at path instead of the writer.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

func (b *Build) Level(level string) *Build {
	if level != "" {
		b.level = level
	}
	return b
}

// Format is "console" for human-readable output or "json".
func (b *Build) Format(format string) *Build {
	if format != "" {
		b.format = format
	}
	return b
}

// Make returns the logger and the file it writes to, if any. The caller
// closes the file.
func (b *Build) Make() (zerolog.Logger, *os.File, error) {
	level, err := ParseLevel(b.level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	w := b.writer
	var f *os.File
	if b.path != "" {
		f, err = os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
		}
		w = zerolog.SyncWriter(f)
	}

	switch strings.ToLower(b.format) {
	case "json":
	case "console":
		// Log files always get JSON.
		if f == nil {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
		}
	default:
		return zerolog.Nop(), f, fmt.Errorf("unknown log format %q", b.format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), f, nil
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
}
