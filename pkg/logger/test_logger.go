package logger

import (
	"context"
	"sync"
)

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// TestLogger captures every log call so tests can assert on them
type TestLogger struct {
	sink *captureSink
	base scopedLogger
}

type captureSink struct {
	mu       sync.Mutex
	messages []LogMessage
}

// scopedLogger is a view onto the shared sink with its own fields and error
type scopedLogger struct {
	sink   *captureSink
	fields map[string]interface{}
	err    error
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	sink := &captureSink{}
	return &TestLogger{sink: sink, base: scopedLogger{sink: sink}}
}

func (l *TestLogger) Debug(msg string) { l.base.Debug(msg) }
func (l *TestLogger) Info(msg string)  { l.base.Info(msg) }
func (l *TestLogger) Warn(msg string)  { l.base.Warn(msg) }
func (l *TestLogger) Error(msg string) { l.base.Error(msg) }
func (l *TestLogger) Fatal(msg string) { l.base.Fatal(msg) }

func (l *TestLogger) DebugWithFields(msg string, f map[string]interface{}) {
	l.base.DebugWithFields(msg, f)
}
func (l *TestLogger) InfoWithFields(msg string, f map[string]interface{}) {
	l.base.InfoWithFields(msg, f)
}
func (l *TestLogger) WarnWithFields(msg string, f map[string]interface{}) {
	l.base.WarnWithFields(msg, f)
}
func (l *TestLogger) ErrorWithFields(msg string, f map[string]interface{}) {
	l.base.ErrorWithFields(msg, f)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.base.WithField(key, value)
}
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.base.WithFields(fields)
}
func (l *TestLogger) WithError(err error) Logger             { return l.base.WithError(err) }
func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

// GetMessages returns a copy of all captured log messages
func (l *TestLogger) GetMessages() []LogMessage {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	messages := make([]LogMessage, len(l.sink.messages))
	copy(messages, l.sink.messages)
	return messages
}

// GetMessagesByLevel returns all messages of a specific level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.GetMessages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	for _, msg := range l.GetMessages() {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// HasError checks if anything was logged at error level
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear clears all captured messages
func (l *TestLogger) Clear() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.messages = l.sink.messages[:0]
}

func (s scopedLogger) log(level, msg string, extra map[string]interface{}) {
	s.sink.mu.Lock()
	defer s.sink.mu.Unlock()

	s.sink.messages = append(s.sink.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  s.merge(extra),
		Error:   s.err,
	})
}

func (s scopedLogger) merge(extra map[string]interface{}) map[string]interface{} {
	if len(s.fields) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(s.fields)+len(extra))
	for k, v := range s.fields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (s scopedLogger) Debug(msg string) { s.log("DEBUG", msg, nil) }
func (s scopedLogger) Info(msg string)  { s.log("INFO", msg, nil) }
func (s scopedLogger) Warn(msg string)  { s.log("WARN", msg, nil) }
func (s scopedLogger) Error(msg string) { s.log("ERROR", msg, nil) }
func (s scopedLogger) Fatal(msg string) { s.log("FATAL", msg, nil) }

func (s scopedLogger) DebugWithFields(msg string, f map[string]interface{}) { s.log("DEBUG", msg, f) }
func (s scopedLogger) InfoWithFields(msg string, f map[string]interface{})  { s.log("INFO", msg, f) }
func (s scopedLogger) WarnWithFields(msg string, f map[string]interface{})  { s.log("WARN", msg, f) }
func (s scopedLogger) ErrorWithFields(msg string, f map[string]interface{}) { s.log("ERROR", msg, f) }

func (s scopedLogger) WithField(key string, value interface{}) Logger {
	return s.WithFields(map[string]interface{}{key: value})
}

func (s scopedLogger) WithFields(fields map[string]interface{}) Logger {
	return scopedLogger{sink: s.sink, fields: s.merge(fields), err: s.err}
}

func (s scopedLogger) WithError(err error) Logger {
	return scopedLogger{sink: s.sink, fields: s.fields, err: err}
}

func (s scopedLogger) WithContext(ctx context.Context) Logger { return s }
