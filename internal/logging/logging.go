// ABOUTME: Logging setup for gwambient
// ABOUTME: Configures the logrus standard logger for file, console or both
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// DebugEnv enables debug logging when set to a true value
const DebugEnv = "GWAMBIENT_DEBUG"

// Config controls where logs go
type Config struct {
	// File is appended to when set
	File string
	// Console also writes to stdout; disable while the TUI owns the terminal
	Console bool
	Debug   bool
}

// DebugFromEnv reports whether DebugEnv asks for debug logging
func DebugFromEnv() bool {
	debug, err := strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		return false
	}
	return debug
}

// Setup configures the standard logger. The returned closer releases the
// log file.
func Setup(cfg Config) (io.Closer, error) {
	return configure(log.StandardLogger(), cfg)
}

func configure(l *log.Logger, cfg Config) (io.Closer, error) {
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if cfg.Debug || DebugFromEnv() {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}

	switch len(writers) {
	case 0:
		l.SetOutput(io.Discard)
	case 1:
		l.SetOutput(writers[0])
	default:
		l.SetOutput(io.MultiWriter(writers...))
	}

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
