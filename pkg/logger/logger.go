// Package logger writes one JSON object per line.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type ErrorObject struct {
	Msg string `json:"msg"`
}

type LogEntry struct {
	Timestamp string       `json:"timestamp"`
	Level     string       `json:"level"`
	Service   string       `json:"service"`
	Action    string       `json:"action"`
	Message   string       `json:"message"`
	Hostname  string       `json:"hostname"`
	RequestID string       `json:"request_id,omitempty"`
	Error     *ErrorObject `json:"error,omitempty"`
	Details   any          `json:"details,omitempty"`
}

type Logger struct {
	service  string
	hostname string

	mu  sync.Mutex
	out io.Writer
}

func NewLogger(service string) *Logger {
	return NewWithWriter(service, os.Stdout)
}

// NewWithWriter is NewLogger with a custom destination.
func NewWithWriter(service string, out io.Writer) *Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &Logger{service: service, hostname: hostname, out: out}
}

// Nop discards everything.
func Nop() *Logger {
	return NewWithWriter("nop", io.Discard)
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID returns a context carrying a request id.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func (l *Logger) emit(ctx context.Context, level, action, msg string, errObj *ErrorObject, details any) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Service:   l.service,
		Action:    action,
		Message:   msg,
		Hostname:  l.hostname,
		RequestID: RequestID(ctx),
		Error:     errObj,
		Details:   details,
	}
	b, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log marshal failed: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(b, '\n'))
}

func (l *Logger) Info(ctx context.Context, action, msg string, details any) {
	l.emit(ctx, "INFO", action, msg, nil, details)
}

func (l *Logger) Debug(ctx context.Context, action, msg string, details any) {
	l.emit(ctx, "DEBUG", action, msg, nil, details)
}

func (l *Logger) Warn(ctx context.Context, action, msg string, details any) {
	l.emit(ctx, "WARN", action, msg, nil, details)
}

func (l *Logger) Error(ctx context.Context, action, msg string, err error) {
	var errObj *ErrorObject
	if err != nil {
		errObj = &ErrorObject{Msg: err.Error()}
	}
	l.emit(ctx, "ERROR", action, msg, errObj, nil)
}
