package log

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

// StructuredLogger traces service operations as a sequence of steps ending in success or error.
type StructuredLogger struct {
	logger *zap.SugaredLogger
	debug  bool
}

// NewDebugLogger logs steps at debug level; success and errors are always logged.
func NewDebugLogger(name string) *StructuredLogger {
	return &StructuredLogger{logger: zap.S().Named(name), debug: true}
}

func NewLogger(name string) *StructuredLogger {
	return &StructuredLogger{logger: zap.S().Named(name)}
}

func (l *StructuredLogger) WithContext(ctx context.Context) *StructuredLogger {
	id := requestid.FromContext(ctx)
	if id == "" {
		return l
	}
	return &StructuredLogger{logger: l.logger.With("request_id", id), debug: l.debug}
}

func (l *StructuredLogger) Operation(name string) *OperationBuilder {
	return &OperationBuilder{logger: l, name: name}
}

type OperationBuilder struct {
	logger *StructuredLogger
	name   string
	fields []any
}

func (b *OperationBuilder) WithString(key, value string) *OperationBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *OperationBuilder) WithInt(key string, value int) *OperationBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *OperationBuilder) WithBool(key string, value bool) *OperationBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *OperationBuilder) WithUUID(key string, value uuid.UUID) *OperationBuilder {
	b.fields = append(b.fields, key, value.String())
	return b
}

func (b *OperationBuilder) WithParam(key string, value any) *OperationBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *OperationBuilder) Build() *OperationTracer {
	fields := append([]any{"operation", b.name}, b.fields...)
	t := &OperationTracer{
		logger: b.logger.logger.With(fields...),
		debug:  b.logger.debug,
		start:  time.Now(),
	}
	t.entry(levelDebug, "operation started").Log()
	return t
}

type OperationTracer struct {
	logger *zap.SugaredLogger
	debug  bool
	start  time.Time
}

func (t *OperationTracer) Step(name string) *LogEntry {
	return t.entry(levelDebug, "step").WithString("step", name)
}

func (t *OperationTracer) Success() *LogEntry {
	return t.entry(levelInfo, "operation succeeded").WithParam("duration_ms", time.Since(t.start).Milliseconds())
}

func (t *OperationTracer) Error(err error) *LogEntry {
	return t.entry(levelError, "operation failed").
		WithParam("duration_ms", time.Since(t.start).Milliseconds()).
		WithParam("error", err)
}

func (t *OperationTracer) entry(lvl level, msg string) *LogEntry {
	if lvl == levelInfo && t.debug {
		lvl = levelDebug
	}
	return &LogEntry{logger: t.logger, level: lvl, msg: msg}
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelError
)

type LogEntry struct {
	logger *zap.SugaredLogger
	level  level
	msg    string
	fields []any
}

func (e *LogEntry) WithString(key, value string) *LogEntry {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *LogEntry) WithInt(key string, value int) *LogEntry {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *LogEntry) WithBool(key string, value bool) *LogEntry {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *LogEntry) WithUUID(key string, value uuid.UUID) *LogEntry {
	e.fields = append(e.fields, key, value.String())
	return e
}

func (e *LogEntry) WithParam(key string, value any) *LogEntry {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *LogEntry) Log() {
	switch e.level {
	case levelError:
		e.logger.Errorw(e.msg, e.fields...)
	case levelInfo:
		e.logger.Infow(e.msg, e.fields...)
	default:
		e.logger.Debugw(e.msg, e.fields...)
	}
}
