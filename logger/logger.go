// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger provides leveled logging with optional ANSI colors and a
// context-carried logger instance.
package logger

import (
	"context"
	"fmt"
	"io"
	goLog "log"
	"os"

	"github.com/vsrinivas/compilestats/color"
)

type globalLoggerKeyType struct{}

// WithLogger returns the context with its logger set as the provided Logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, globalLoggerKeyType{}, logger)
}

// LoggerFromContext returns the context logger if configured, otherwise nil.
func LoggerFromContext(ctx context.Context) *Logger {
	if v, ok := ctx.Value(globalLoggerKeyType{}).(*Logger); ok && v != nil {
		return v
	}
	return nil
}

// Logger writes messages at or above a configured LogLevel, with a colored
// level prefix and an optional per-logger prefix.
type Logger struct {
	LoggerLevel   LogLevel
	goLogger      *goLog.Logger
	goErrorLogger *goLog.Logger
	color         color.Color
	prefix        any
}

// LogLevel represents different levels for logging depending on the amount of detail wanted.
type LogLevel int

const (
	NoLogLevel LogLevel = iota
	FatalLevel
	ErrorLevel
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

var levelToName = map[LogLevel]string{
	NoLogLevel:   "no",
	FatalLevel:   "fatal",
	ErrorLevel:   "error",
	WarningLevel: "warning",
	InfoLevel:    "info",
	DebugLevel:   "debug",
	TraceLevel:   "trace",
}

// Populated at runtime by init() by inverting levelToName.
var nameToLevel = map[string]LogLevel{}

func init() {
	for level, name := range levelToName {
		nameToLevel[name] = level
	}
}

// Copied from Go log so callers don't need to also import log.
const (
	Ldate         = 1 << iota             // the date in the local time zone: 2009/01/23
	Ltime                                 // the time in the local time zone: 01:23:23
	Lmicroseconds                         // microsecond resolution: 01:23:23.123123.  assumes Ltime.
	Llongfile                             // full file name and line number: /a/b/c/d.go:23
	Lshortfile                            // final file name element and line number: d.go:23. overrides Llongfile
	LUTC                                  // if Ldate or Ltime is set, use UTC rather than the local time zone
	Lmsgprefix                            // move the "prefix" from the beginning of the line to before the message
	LstdFlags     = Ldate | Lmicroseconds // initial values for the standard logger
)

// startDepth defines the starting point for the call depth when entering the logger.
const startDepth = 2

// String returns the string representation of the LogLevel, or an empty string
// if the LogLevel has no string representation specified.
func (l *LogLevel) String() string {
	return levelToName[*l]
}

// Set sets the LogLevel based on its string value.
func (l *LogLevel) Set(s string) error {
	level, ok := nameToLevel[s]
	if !ok {
		return fmt.Errorf("%s is not a valid level", s)
	}
	*l = level
	return nil
}

// NewLogger creates a new logger instance. The loggerLevel variable sets the log level for the logger.
// The color variable specifies the visual color of displayed log output.
// The outWriter and errWriter variables set the destination to which non-error and error data will be written.
// The prefix appears on the same line directly preceding any log data. It should be thread-safe to format this value.
func NewLogger(loggerLevel LogLevel, color color.Color, outWriter, errWriter io.Writer, prefix any) *Logger {
	if outWriter == nil {
		outWriter = os.Stdout
	}
	if errWriter == nil {
		errWriter = os.Stderr
	}
	return &Logger{
		LoggerLevel:   loggerLevel,
		goLogger:      goLog.New(outWriter, "", LstdFlags),
		goErrorLogger: goLog.New(errWriter, "", LstdFlags),
		color:         color,
		prefix:        prefix,
	}
}

// SetFlags sets the output flags, as defined by the log package, on both
// underlying loggers.
func (l *Logger) SetFlags(flags int) {
	l.goLogger.SetFlags(flags)
	l.goErrorLogger.SetFlags(flags)
}

func (l *Logger) levelPrefix(level LogLevel) string {
	switch level {
	case FatalLevel:
		return l.color.Red("FATAL: ")
	case ErrorLevel:
		return l.color.Red("ERROR: ")
	case WarningLevel:
		return l.color.Yellow("WARN: ")
	case DebugLevel:
		return l.color.Cyan("DEBUG: ")
	case TraceLevel:
		return l.color.Blue("TRACE: ")
	}
	return ""
}

// logf is the single emission path. Error and fatal messages go to the error
// writer; a fatal message exits the process.
func (l *Logger) logf(callDepth int, level LogLevel, format string, a ...any) {
	if level == NoLogLevel {
		panic(fmt.Sprintf("undefined log level: %v, log message: %s", level, fmt.Sprintf(format, a...)))
	}
	if l.LoggerLevel < level {
		return
	}
	out := l.goLogger
	if level <= ErrorLevel {
		out = l.goErrorLogger
	}
	out.Output(callDepth+1, fmt.Sprintf("%s%s%s", l.prefix, l.levelPrefix(level), fmt.Sprintf(format, a...)))
	if level == FatalLevel {
		os.Exit(1)
	}
}

// Logf logs the string at the given level against the logger's LogLevel.
func (l *Logger) Logf(logLevel LogLevel, format string, a ...any) {
	l.logf(startDepth, logLevel, format, a...)
}

func logf(callDepth int, ctx context.Context, logLevel LogLevel, format string, a ...any) {
	if v := LoggerFromContext(ctx); v != nil {
		v.logf(callDepth+1, logLevel, format, a...)
	} else {
		goLog.Output(callDepth+1, fmt.Sprintf(format, a...))
	}
}

// Logf logs with the context logger if one is configured, and with the default
// Go logger otherwise.
func Logf(ctx context.Context, logLevel LogLevel, format string, a ...any) {
	logf(startDepth, ctx, logLevel, format, a...)
}

// Infof logs the string if the logger is at least InfoLevel.
func (l *Logger) Infof(format string, a ...any) {
	l.logf(startDepth, InfoLevel, format, a...)
}

func Infof(ctx context.Context, format string, a ...any) {
	logf(startDepth, ctx, InfoLevel, format, a...)
}

// Debugf logs the string if the logger is at least DebugLevel.
func (l *Logger) Debugf(format string, a ...any) {
	l.logf(startDepth, DebugLevel, format, a...)
}

func Debugf(ctx context.Context, format string, a ...any) {
	logf(startDepth, ctx, DebugLevel, format, a...)
}

// Tracef logs the string if the logger is at least TraceLevel.
func (l *Logger) Tracef(format string, a ...any) {
	l.logf(startDepth, TraceLevel, format, a...)
}

func Tracef(ctx context.Context, format string, a ...any) {
	logf(startDepth, ctx, TraceLevel, format, a...)
}

// Warningf logs the string if the logger is at least WarningLevel.
func (l *Logger) Warningf(format string, a ...any) {
	l.logf(startDepth, WarningLevel, format, a...)
}

func Warningf(ctx context.Context, format string, a ...any) {
	logf(startDepth, ctx, WarningLevel, format, a...)
}

// Errorf logs the string if the logger is at least ErrorLevel.
func (l *Logger) Errorf(format string, a ...any) {
	l.logf(startDepth, ErrorLevel, format, a...)
}

func Errorf(ctx context.Context, format string, a ...any) {
	logf(startDepth, ctx, ErrorLevel, format, a...)
}

// Fatalf logs the string if the logger is at least FatalLevel, then exits.
func (l *Logger) Fatalf(format string, a ...any) {
	l.logf(startDepth, FatalLevel, format, a...)
}

func Fatalf(ctx context.Context, format string, a ...any) {
	logf(startDepth, ctx, FatalLevel, format, a...)
}
