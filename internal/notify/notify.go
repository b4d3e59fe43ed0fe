// Package notify delivers transient user notifications.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// Logger writes notifications through zap. Errors go to the warn level
// since they were already handled.
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("notify")}
}

func (l *Logger) Info(msg string) {
	l.logger.Info(msg, zap.String("level", string(LevelInfo)))
}

func (l *Logger) Success(msg string) {
	l.logger.Info(msg, zap.String("level", string(LevelSuccess)))
}

func (l *Logger) Error(msg string) {
	l.logger.Warn(msg, zap.String("level", string(LevelError)))
}

type Notification struct {
	Level   Level
	Message string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: msg})
}

// All returns a copy of recorded notifications in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Nop discards everything.
type Nop struct{}

func (Nop) Info(string)    {}
func (Nop) Success(string) {}
func (Nop) Error(string)   {}
