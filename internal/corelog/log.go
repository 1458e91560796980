// Package corelog provides the single debug-log sink the core writes
// through. It deliberately stays thin: the core never chooses a logging
// backend, it only ever writes lines through the Logger interface the
// IoProvider contract (spec.md §4.1) names.
package corelog

import (
	"log"
	"os"
)

// Logger is the single string sink every core component writes through.
// An external runtime may route this into structured logging, SignalK's
// own debug channel, or /dev/null; the core only ever calls Debugf/Warnf.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Standard wraps the stdlib *log.Logger, matching the teacher's habit of
// logging through log.Printf with a short prefix rather than a structured
// logging library.
type Standard struct {
	l *log.Logger
}

// NewStandard returns a Logger backed by the standard library, writing to
// stderr with a component prefix.
func NewStandard(prefix string) *Standard {
	return &Standard{l: log.New(os.Stderr, prefix+" ", log.LstdFlags)}
}

func (s *Standard) Debugf(format string, args ...any) {
	s.l.Printf(format, args...)
}

func (s *Standard) Warnf(format string, args ...any) {
	s.l.Printf("WARN "+format, args...)
}

// Discard is a Logger that drops everything; useful for tests.
type Discard struct{}

func (Discard) Debugf(string, ...any) {}
func (Discard) Warnf(string, ...any)  {}
