/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger provides leveled logging for the indicator engine and service.
// Messages are printf-formatted and written as logfmt records through go-kit/log.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Level defines log levels
type Level int

const (
	// DEBUG debug level, displays detailed debug information
	DEBUG Level = iota
	// INFO info level, displays general information
	INFO
	// WARN warning level, displays warning information
	WARN
	// ERROR error level, only displays error information
	ERROR
	// OFF disables logging
	OFF
)

// String returns string representation of log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a case-insensitive level name. "warning" and "none" are accepted aliases.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "OFF", "NONE":
		return OFF, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Logger interface defines basic methods for logging
type Logger interface {
	// Debug records debug level logs
	Debug(format string, args ...interface{})
	// Info records info level logs
	Info(format string, args ...interface{})
	// Warn records warning level logs
	Warn(format string, args ...interface{})
	// Error records error level logs
	Error(format string, args ...interface{})
	// SetLevel sets the log level
	SetLevel(level Level)
	// With returns a logger that adds keyvals to every record.
	// The returned logger shares the level of its parent.
	With(keyvals ...interface{}) Logger
}

type kitLogger struct {
	level  *atomic.Int32
	logger kitlog.Logger
}

// NewLogger creates a logfmt logger writing to output.
//
// Example:
//
//	logger := NewLogger(INFO, os.Stdout)
//	logger.Info("listening on %s", addr)
//
// produces
//
//	ts=2025-01-02T15:04:05.000Z level=info msg="listening on :8080"
func NewLogger(lvl Level, output io.Writer) Logger {
	base := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(output))
	base = kitlog.With(base, "ts", kitlog.DefaultTimestampUTC)
	return NewKitLogger(lvl, base)
}

// NewKitLogger adapts an existing go-kit logger.
func NewKitLogger(lvl Level, base kitlog.Logger) Logger {
	l := &kitLogger{level: new(atomic.Int32), logger: base}
	l.level.Store(int32(lvl))
	return l
}

func (l *kitLogger) enabled(lvl Level) bool {
	current := Level(l.level.Load())
	return current != OFF && current <= lvl
}

func (l *kitLogger) Debug(format string, args ...interface{}) {
	if l.enabled(DEBUG) {
		_ = level.Debug(l.logger).Log("msg", fmt.Sprintf(format, args...))
	}
}

func (l *kitLogger) Info(format string, args ...interface{}) {
	if l.enabled(INFO) {
		_ = level.Info(l.logger).Log("msg", fmt.Sprintf(format, args...))
	}
}

func (l *kitLogger) Warn(format string, args ...interface{}) {
	if l.enabled(WARN) {
		_ = level.Warn(l.logger).Log("msg", fmt.Sprintf(format, args...))
	}
}

func (l *kitLogger) Error(format string, args ...interface{}) {
	if l.enabled(ERROR) {
		_ = level.Error(l.logger).Log("msg", fmt.Sprintf(format, args...))
	}
}

func (l *kitLogger) SetLevel(lvl Level) {
	l.level.Store(int32(lvl))
}

func (l *kitLogger) With(keyvals ...interface{}) Logger {
	return &kitLogger{level: l.level, logger: kitlog.With(l.logger, keyvals...)}
}

// discardLogger is a logger that discards all log output
type discardLogger struct{}

// NewDiscardLogger creates a logger that discards all logs
// Used in scenarios where log output is not needed
func NewDiscardLogger() Logger {
	return discardLogger{}
}

func (discardLogger) Debug(format string, args ...interface{}) {}
func (discardLogger) Info(format string, args ...interface{})  {}
func (discardLogger) Warn(format string, args ...interface{})  {}
func (discardLogger) Error(format string, args ...interface{}) {}
func (discardLogger) SetLevel(level Level)                     {}
func (d discardLogger) With(keyvals ...interface{}) Logger     { return d }

var defaultInstance atomic.Value

func init() {
	SetDefault(NewLogger(INFO, os.Stderr))
}

type holder struct{ Logger }

// SetDefault sets the global default logger
func SetDefault(logger Logger) {
	defaultInstance.Store(holder{logger})
}

// GetDefault gets the global default logger
func GetDefault() Logger {
	return defaultInstance.Load().(holder).Logger
}

// Debug uses the default logger to record debug information
func Debug(format string, args ...interface{}) {
	GetDefault().Debug(format, args...)
}

// Info uses the default logger to record information
func Info(format string, args ...interface{}) {
	GetDefault().Info(format, args...)
}

// Warn uses the default logger to record warnings
func Warn(format string, args ...interface{}) {
	GetDefault().Warn(format, args...)
}

// Error uses the default logger to record errors
func Error(format string, args ...interface{}) {
	GetDefault().Error(format, args...)
}
