// SPDX-License-Identifier: AGPL-3.0-or-later

/*
partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger provides structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair in structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// NewField creates a new field.
func NewField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// loggerImpl backs Logger with zap: a console core splitting Error-level
// entries to errOut and everything else to out (mirroring the plain
// fmt.Fprintf implementation this replaces), plus an optional
// lumberjack-rotated JSON file core when rotateFile is set.
type loggerImpl struct {
	level      Level
	out        io.Writer
	errOut     io.Writer
	fields     []Field
	rotateFile string

	zl *zap.Logger
}

// NewLogger creates a new logger writing to stdout/stderr.
// If verbose is true, Debug level logs are shown.
func NewLogger(verbose bool) Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	return &loggerImpl{
		level:  level,
		out:    os.Stdout,
		errOut: os.Stderr,
		fields: []Field{},
	}
}

// NewFileLogger creates a logger that additionally rotates structured
// JSON output to logFilePath via lumberjack, for long partbuilder runs
// where stdout alone isn't enough to audit a plan/execute afterward.
func NewFileLogger(verbose bool, logFilePath string) Logger {
	l := NewLogger(verbose).(*loggerImpl)
	l.rotateFile = logFilePath
	return l
}

func (l *loggerImpl) zapLogger() *zap.Logger {
	if l.zl != nil {
		return l.zl
	}

	cfg := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,
		LineEnding:  zapcore.DefaultLineEnding,
	}
	encoder := zapcore.NewConsoleEncoder(cfg)

	minLevel := l.level.zapLevel()
	outCore := zapcore.NewCore(encoder, zapcore.AddSync(l.out), zapcore.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= minLevel && lvl < zapcore.ErrorLevel
	}))
	errCore := zapcore.NewCore(encoder, zapcore.AddSync(l.errOut), zapcore.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	}))
	cores := []zapcore.Core{outCore, errCore}

	if l.rotateFile != "" {
		fileSync := zapcore.AddSync(&lumberjack.Logger{
			Filename:   l.rotateFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		fileCore := zapcore.NewCore(fileEncoder, fileSync, zapcore.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= minLevel
		}))
		cores = append(cores, fileCore)
	}

	l.zl = zap.New(zapcore.NewTee(cores...))
	return l.zl
}

// Debug logs a debug message.
func (l *loggerImpl) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *loggerImpl) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *loggerImpl) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message (always shown).
func (l *loggerImpl) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// WithFields returns a new logger with additional fields.
func (l *loggerImpl) WithFields(fields ...Field) Logger {
	return &loggerImpl{
		level:      l.level,
		out:        l.out,
		errOut:     l.errOut,
		rotateFile: l.rotateFile,
		fields:     append(append([]Field(nil), l.fields...), fields...),
		zl:         l.zl,
	}
}

// log formats msg and its fields exactly as the original fmt-based
// implementation did ("msg (k=v, k2=v2)") and hands the resulting line to
// zap as the entry message, so zap owns level filtering and the
// out/errOut/file fan-out while the on-the-wire text partbuilder prints
// stays stable.
func (l *loggerImpl) log(level Level, msg string, fields ...Field) {
	allFields := append(append([]Field(nil), l.fields...), fields...)

	line := msg
	if len(allFields) > 0 {
		parts := make([]string, 0, len(allFields))
		for _, f := range allFields {
			parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		line = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, ", "))
	}

	zl := l.zapLogger()
	switch level {
	case LevelDebug:
		zl.Debug(line)
	case LevelWarn:
		zl.Warn(line)
	case LevelError:
		zl.Error(line)
	default:
		zl.Info(line)
	}
}
