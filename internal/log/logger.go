// Package log is the application logger. It keeps a small, field-oriented
// API on top of logrus so packages never import logrus directly.
package log

import (
	"io"
	"os"
	"strings"

	"imgview/internal/errors"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = NewLogger()

// Field is a single structured key/value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger wraps a logrus entry. Loggers are immutable: With returns a copy.
type Logger struct {
	entry *logrus.Entry
	file  io.Closer
}

type options struct {
	out      io.Writer
	json     bool
	level    logrus.Level
	filePath string
	rotation Rotation
}

// Rotation controls the rotating log file written by WithFile
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Option configures a Logger
type Option func(*options)

// WithOutput directs log output to w
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithJSON switches to JSON formatted entries
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithLevel sets the minimum level (debug, info, warn, error).
// Unknown names leave the level unchanged.
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
			o.level = lvl
		}
	}
}

// WithFile additionally writes entries to a rotating log file at path
func WithFile(path string) Option {
	return func(o *options) {
		o.filePath = path
	}
}

// WithRotation sets rotation limits for WithFile
func WithRotation(r Rotation) Option {
	return func(o *options) {
		o.rotation = r
	}
}

// NewLogger creates a logger writing text entries to stdout at info level
func NewLogger(opts ...Option) *Logger {
	o := options{
		out:   os.Stdout,
		level: logrus.InfoLevel,
		rotation: Rotation{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	l := logrus.New()
	l.SetLevel(o.level)

	if o.json {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	var file io.Closer
	out := o.out
	if o.filePath != "" {
		rotating := &lumberjack.Logger{
			Filename:   o.filePath,
			MaxSize:    o.rotation.MaxSizeMB,
			MaxBackups: o.rotation.MaxBackups,
			MaxAge:     o.rotation.MaxAgeDays,
		}
		out = io.MultiWriter(o.out, rotating)
		file = rotating
	}
	l.SetOutput(out)

	return &Logger{entry: logrus.NewEntry(l), file: file}
}

// Configure replaces the global logger
func Configure(opts ...Option) {
	previous := logger
	logger = NewLogger(opts...)
	if previous != nil && previous.file != nil {
		_ = previous.file.Close()
	}
}

// Close releases the log file, if any
func Close() error {
	if logger.file != nil {
		return logger.file.Close()
	}
	return nil
}

// SetDebug toggles debug output on the global logger
func SetDebug(debug bool) {
	if debug {
		logger.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

// With returns a logger that attaches fields to every entry
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithError attaches err and, for application errors, their kind and
// subject (path, param, mime).
func (l *Logger) WithError(err error) *Logger {
	return l.With(errorFields(err)...)
}

func (l *Logger) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{
		F("error", err.Error()),
		F("error_kind", errors.KindOf(err).String()),
	}

	var fileErr *errors.FileError
	var configErr *errors.ConfigError
	var decodeErr *errors.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		fields = append(fields, F("path", decodeErr.Path()))
		if decodeErr.MIME() != "" {
			fields = append(fields, F("mime", decodeErr.MIME()))
		}
	case errors.As(err, &fileErr):
		if fileErr.Path() != "" {
			fields = append(fields, F("path", fileErr.Path()))
		}
	case errors.As(err, &configErr):
		if configErr.Param() != "" {
			fields = append(fields, F("param", configErr.Param()))
		}
	}
	return fields
}

// Global helpers

// LogWithFields returns the global logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the global logger with error fields attached
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err at error level with msg
func LogError(err error, msg string) {
	logger.WithError(err).Error(msg)
}

func Debug(args ...interface{})                 { logger.Debug(args...) }
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Info(args ...interface{})                  { logger.Info(args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warn(args ...interface{})                  { logger.Warn(args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Error(args ...interface{})                 { logger.Error(args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
