// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to warn.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}

// Setup installs a global logger writing human-readable lines to console
// and JSON lines to file. An empty file disables file output. If the file
// cannot be opened, logging continues on the console only and a warning is
// logged. The returned func closes the file.
func Setup(level string, file string, console io.Writer) func() {
	lvl := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
	}}

	var (
		fh  *os.File
		err error
	)
	if file != "" {
		fh, err = openLogFile(file)
		if err == nil {
			writers = append(writers, fh)
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if lvl <= zerolog.DebugLevel {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	if err != nil {
		log.Warn().Err(err).Str("path", file).Msg("Failed to open log file, logging to console only")
	}
	log.Debug().Str("level", lvl.String()).Str("logFile", file).Msg("Logger initialized")

	return func() {
		if fh != nil {
			_ = fh.Close()
		}
	}
}

// Get returns the global logger tagged with component.
func Get(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
