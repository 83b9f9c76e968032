// Package logging is the scheduler's structured logging layer: a logrus
// core with a fatih/color formatter, a YAML-configured set of enabled
// channels, and a channel-pair fan-out so a slow sink never blocks the
// event loop.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithOutput overrides the console sink (default os.Stderr).
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.base.SetOutput(w) }
}

// WithFile additionally tees every log line to the named file.
func WithFile(path string) Option {
	return func(l *Logger) {
		f, err := os.Create(path)
		if err != nil {
			l.base.WithField(channelField, ERROR).Errorf("logging: could not open %s: %v", path, err)
			return
		}
		l.file = f
		l.base.SetOutput(io.MultiWriter(l.base.Out, f))
	}
}

// Logger is the scheduler's single logging entry point. It implements the
// reduced Debugf/Infof interface that internal/placement, internal/
// consolidate and internal/migration depend on, so the engine can hand
// the same concrete Logger to every component.
type Logger struct {
	mu       sync.Mutex
	base     *logrus.Logger
	disabled map[LogMessageType]bool
	file     *os.File
}

// New constructs a Logger from cfg, applying opts afterward.
func New(cfg Config, opts ...Option) *Logger {
	base := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: Formatter{TimestampFormat: "2006-01-02 15:04:05"},
		Level:     levelFromString(cfg.Console.MinLogLevel),
	}

	l := &Logger{base: base, disabled: make(map[LogMessageType]bool)}
	for _, name := range cfg.Disabled {
		if mt, ok := nameToType(name); ok {
			l.disabled[mt] = true
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func levelFromString(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Enable turns a channel on, overriding config.
func (l *Logger) Enable(mt LogMessageType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.disabled, mt)
}

// Disable silences a channel, overriding config.
func (l *Logger) Disable(mt LogMessageType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disabled[mt] = true
}

// Logf writes a formatted message tagged with a channel at a given
// severity.
func (l *Logger) Logf(mt LogMessageType, level logrus.Level, format string, args ...interface{}) {
	l.mu.Lock()
	skip := l.disabled[mt]
	l.mu.Unlock()
	if skip {
		return
	}
	l.base.WithField(channelField, mt).Logf(level, format, args...)
}

// Debugf satisfies placement.Logger / consolidate.Logger / migration.Logger.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Logf(GENERAL, logrus.DebugLevel, format, args...)
}

// Infof satisfies placement.Logger / consolidate.Logger / migration.Logger.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Logf(GENERAL, logrus.InfoLevel, format, args...)
}

// Warnf logs at WARNING on the WARNING channel.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Logf(WARNING, logrus.WarnLevel, format, args...)
}

// Errorf logs at ERROR on the ERROR channel.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Logf(ERROR, logrus.ErrorLevel, format, args...)
}

// levelFor picks a default logrus level for a channel that has no
// explicit level attached, used only by Listen where the wire format is
// just (channel, message).
func levelFor(mt LogMessageType) logrus.Level {
	switch mt {
	case ERROR:
		return logrus.ErrorLevel
	case WARNING:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}

// Listen drains the (LogMessageType, message) channel pair a caller
// writes onto off the event-loop path, so a slow log sink never blocks a
// caller mid-sweep.
func (l *Logger) Listen(types <-chan LogMessageType, msgs <-chan string) {
	for mt := range types {
		msg, ok := <-msgs
		if !ok {
			return
		}
		l.Logf(mt, levelFor(mt), "%s", msg)
	}
}

// Close flushes and closes the file sink, if one was attached.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
