package console

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger writes structured key-value log lines to stderr via
// charmbracelet/log. It satisfies logger.Backend.
type Logger struct {
	l *log.Logger
}

// Options configures a console logger.
type Options struct {
	// Debug lowers the level cutoff from INFO to DEBUG.
	Debug bool
	// Prefix is prepended to every line, e.g. the process name.
	Prefix string
}

// New creates a console logger that writes to stderr.
func New(opts Options) *Logger {
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	return &Logger{
		l: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          opts.Prefix,
		}),
	}
}

// Log writes a message at the default level.
func (c *Logger) Log(message string, keyvals ...any) {
	c.l.Print(message, keyvals...)
}

// Debug writes a message at DEBUG level.
func (c *Logger) Debug(message string, keyvals ...any) {
	c.l.Debug(message, keyvals...)
}

// Info writes a message at INFO level.
func (c *Logger) Info(message string, keyvals ...any) {
	c.l.Info(message, keyvals...)
}

// Warn writes a message at WARN level.
func (c *Logger) Warn(message string, keyvals ...any) {
	c.l.Warn(message, keyvals...)
}

// Error writes a message at ERROR level.
func (c *Logger) Error(message string, keyvals ...any) {
	c.l.Error(message, keyvals...)
}

// Fatal writes a message at FATAL level and terminates the program.
func (c *Logger) Fatal(message string, keyvals ...any) {
	c.l.Fatal(message, keyvals...)
}
