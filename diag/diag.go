// Package diag 提供引擎的调试/告警通道。
// 引擎只在配置降级（未知 region、preset、字体组合）或几何异常时写日志，
// 从不因此返回错误。
package diag

import (
	"fmt"
	"log"
	"strings"
)

// Logger 是分级结构化日志接口；With 返回带固定字段的子 Logger。
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field 是一条日志附带的键值对。
type Field interface {
	Key() string
	Value() any
}

// kv 是 Field 的唯一实现。
type kv struct {
	key string
	val any
}

func (f kv) Key() string { return f.key }
func (f kv) Value() any  { return f.val }

// String 构造字符串字段。
func String(key, value string) Field { return kv{key: key, val: value} }

// Int 构造整数字段。
func Int(key string, value int) Field { return kv{key: key, val: value} }

// Float 构造浮点字段，通常是 pt 长度。
func Float(key string, value float64) Field { return kv{key: key, val: value} }

// Error 把 err 作为字段值。
func Error(key string, err error) Field { return kv{key: key, val: err} }

// NopLogger 丢弃所有日志，是各组件的默认值。
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// StdLogger 将结构化字段拼接为 key=value 后写入标准库 log。
type StdLogger struct {
	l      *log.Logger
	debug  bool
	fields []Field
}

// NewStdLogger 包装 l；l 为 nil 时使用 log.Default()。debug 为 false 时丢弃 Debug 级别。
func NewStdLogger(l *log.Logger, debug bool) *StdLogger {
	if l == nil {
		l = log.Default()
	}
	return &StdLogger{l: l, debug: debug}
}

func (s *StdLogger) Debug(msg string, fields ...Field) {
	if s.debug {
		s.emit("DEBUG", msg, fields)
	}
}
func (s *StdLogger) Info(msg string, fields ...Field)  { s.emit("INFO", msg, fields) }
func (s *StdLogger) Warn(msg string, fields ...Field)  { s.emit("WARN", msg, fields) }
func (s *StdLogger) Error(msg string, fields ...Field) { s.emit("ERROR", msg, fields) }

func (s *StdLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(s.fields)+len(fields))
	merged = append(merged, s.fields...)
	merged = append(merged, fields...)
	return &StdLogger{l: s.l, debug: s.debug, fields: merged}
}

func (s *StdLogger) emit(level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString("[nexal] ")
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range append(append([]Field{}, s.fields...), fields...) {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	s.l.Print(b.String())
}

// OrNop 在 l 为 nil 时返回 NopLogger。
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
