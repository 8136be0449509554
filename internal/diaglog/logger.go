// Package diaglog builds the process logger: logrus writing to stderr and,
// optionally, to an append-only log file.
package diaglog

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Manager owns the logger and its optional file.
type Manager struct {
	path   string
	base   io.Writer
	mu     sync.Mutex
	file   *os.File
	logger *log.Logger
}

// New creates a logger writing to stderr and, when path is set, to path.
func New(path string) *Manager {
	return NewWithWriter(path, os.Stderr)
}

// NewWithWriter is New with a custom primary writer.
func NewWithWriter(path string, base io.Writer) *Manager {
	logger := log.New()
	logger.SetOutput(base)
	logger.SetLevel(log.InfoLevel)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return &Manager{
		path:   strings.TrimSpace(path),
		base:   base,
		logger: logger,
	}
}

// Configure sets the level and opens the log file if one is configured.
func (m *Manager) Configure(levelRaw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.SetLevel(ParseLevel(levelRaw))
	if err := m.ensureFileLocked(); err != nil {
		return err
	}
	if m.file != nil {
		m.logger.SetOutput(io.MultiWriter(m.base, m.file))
	}
	return nil
}

// Logger returns the configured logger.
func (m *Manager) Logger() *log.Logger {
	return m.logger
}

// Close closes the log file descriptor.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return nil
	}
	m.logger.SetOutput(m.base)
	err := m.file.Close()
	m.file = nil
	return err
}

func (m *Manager) ensureFileLocked() error {
	if m.path == "" || m.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return err
	}
	file, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	m.file = file
	return nil
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(raw string) log.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Discard returns a logger that drops everything, for tests and library use.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}
