// Package logger provides a tiny stderr logger, in the same shape as age's
// internal/logger: a prefixed *log.Logger wrapper with a handful of leveled
// helpers, used by cmd/bigarchiver for progress and diagnostic output.
package logger

import (
	"log"
	"os"
)

type Logger struct {
	ll *log.Logger
}

var Global = &Logger{ll: log.New(os.Stderr, "", 0)}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.ll.Printf("bigarchiver: "+format, v...)
}

// Warningf logs a non-fatal warning; the run continues.
func (l *Logger) Warningf(format string, v ...interface{}) {
	l.Printf("warning: "+format, v...)
}

// Errorf logs a fatal error. Unlike age's logger, it does not call
// os.Exit: cmd/bigarchiver maps returned errors to exit codes itself so
// that the error taxonomy in bigerr stays the single source of truth for
// exit status.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.Printf("error: "+format, v...)
}
