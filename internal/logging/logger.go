package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// ParseLevel maps a config string to a LogLevel, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	OutputFile string    // Path to log file (empty = Output only)
	Output     io.Writer // Console sink (default: stderr, stdout carries results)
	MaxSize    int64     // Max size in bytes before rotation (default: 10MB)
	MaxBackups int       // Number of old log files to keep (default: 3)
	JSONFormat bool
	AddSource  bool
}

// Logger wraps slog.Logger with file output and rotation
type Logger struct {
	slog   *slog.Logger
	config Config
	file   *os.File
	mu     sync.Mutex
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Initialize creates the global logger. Calling it again replaces the
// previous logger and closes its file.
func Initialize(config Config) error {
	logger, err := NewLogger(config)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	globalMu.Lock()
	prev := globalLogger
	globalLogger = logger
	globalMu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

// NewLogger creates a new logger instance with the given configuration
func NewLogger(config Config) (*Logger, error) {
	if config.MaxSize == 0 {
		config.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 3
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	logger := &Logger{config: config}

	writers := []io.Writer{config.Output}

	if config.OutputFile != "" {
		dir := filepath.Dir(config.OutputFile)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}

		if err := logger.rotateIfNeeded(); err != nil {
			return nil, fmt.Errorf("failed to rotate logs: %w", err)
		}

		file, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.OutputFile, err)
		}
		logger.file = file
		writers = append(writers, file)
	}

	multiWriter := io.MultiWriter(writers...)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(config.Level),
		AddSource: config.AddSource,
	}

	if config.JSONFormat {
		handler = slog.NewJSONHandler(multiWriter, opts)
	} else {
		handler = slog.NewTextHandler(multiWriter, opts)
	}

	logger.slog = slog.New(handler)
	return logger, nil
}

// rotateIfNeeded checks if log file needs rotation and performs it
func (l *Logger) rotateIfNeeded() error {
	if l.config.OutputFile == "" {
		return nil
	}

	info, err := os.Stat(l.config.OutputFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	if info.Size() < l.config.MaxSize {
		return nil
	}

	for i := l.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", l.config.OutputFile, i)
		newPath := fmt.Sprintf("%s.%d", l.config.OutputFile, i+1)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, newPath)
		}
	}

	backupPath := fmt.Sprintf("%s.1", l.config.OutputFile)
	if err := os.Rename(l.config.OutputFile, backupPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return nil
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog exposes the underlying *slog.Logger
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Component returns a logger tagged with the component name, backed by the
// global logger when one was initialized and slog.Default otherwise.
func Component(name string) *slog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalLogger != nil {
		return globalLogger.slog.With("component", name)
	}
	return slog.Default().With("component", name)
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close closes the global logger
func Close() error {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}
