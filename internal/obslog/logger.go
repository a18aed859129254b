package obslog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// New creates a JSON logger writing to w at the given minimum level.
func New(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{writer: w, level: level, fields: make([]Field, 0)}
}

// NewDefault creates a logger writing to stdout at INFO level.
func NewDefault() *JSONLogger {
	return New(os.Stdout, InfoLevel)
}

func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fieldMap := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	entry := Entry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] failed to marshal log entry: %v\n", err)
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

func (l *JSONLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make([]Field, len(l.fields)+len(fields))
	copy(merged, l.fields)
	copy(merged[len(l.fields):], fields)

	return &JSONLogger{writer: l.writer, level: l.level, fields: merged}
}

func (l *JSONLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *JSONLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

var (
	defaultLogger Logger
	once          sync.Once
)

// Default returns the process-wide logger, level controlled by the
// QUERYPLAN_LOG_LEVEL environment variable.
func Default() Logger {
	once.Do(func() {
		level := InfoLevel
		if s := os.Getenv("QUERYPLAN_LOG_LEVEL"); s != "" {
			level = ParseLevel(s)
		}
		defaultLogger = NewDefault().withLevel(level)
	})
	return defaultLogger
}

func (l *JSONLogger) withLevel(level Level) *JSONLogger {
	l.SetLevel(level)
	return l
}

// SetDefault overrides the process-wide logger, e.g. to a NopLogger in
// tests.
func SetDefault(logger Logger) { defaultLogger = logger }

// StartTimer begins timing an operation that will be closed out with End
// or EndError.
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{logger: logger, msg: msg, start: time.Now(), fields: fields}
}

func (t *TimedOperation) End() {
	t.logger.Info(t.msg, append(t.fields, Latency(time.Since(t.start)))...)
}

func (t *TimedOperation) EndError(err error) {
	t.logger.Error(t.msg, append(t.fields, Latency(time.Since(t.start)), Err(err))...)
}
