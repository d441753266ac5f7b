package otel

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 構造化ロガー（zapにトレースコンテキストを付与して出力）
type Logger struct {
	tracer trace.Tracer
	zap    *zap.Logger
}

// LogLevel ログレベル
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// ParseLogLevel 設定値の文字列からLogLevelを返す
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "warn", "WARN":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type loggerOptions struct {
	level LogLevel
	core  zapcore.Core
}

// LoggerOption Loggerのオプション
type LoggerOption func(*loggerOptions)

// WithLevel 最小ログレベルを設定
func WithLevel(level LogLevel) LoggerOption {
	return func(o *loggerOptions) {
		o.level = level
	}
}

// WithCore 出力先のzapcore.Coreを差し替える（テスト用）
func WithCore(core zapcore.Core) LoggerOption {
	return func(o *loggerOptions) {
		o.core = core
	}
}

// NewLogger 新しいLoggerを作成
func NewLogger(tracer trace.Tracer, opts ...LoggerOption) *Logger {
	o := &loggerOptions{level: LogLevelInfo}
	for _, opt := range opts {
		opt(o)
	}

	core := o.core
	if core == nil {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.MessageKey = "message"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		core = zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(os.Stdout),
			o.level.zapLevel(),
		)
	}

	return &Logger{
		tracer: tracer,
		zap:    zap.New(core),
	}
}

// Log ログを出力
func (l *Logger) Log(ctx context.Context, level LogLevel, message string, fields map[string]interface{}) {
	zapFields := make([]zap.Field, 0, len(fields)+2)
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	// トレースIDとSpanIDを取得
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		zapFields = append(zapFields,
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}

	if ce := l.zap.Check(level.zapLevel(), message); ce != nil {
		ce.Write(zapFields...)
	}
}

// Debug Debugレベルのログを出力
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelDebug, message, fields)
}

// Info Infoレベルのログを出力
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelInfo, message, fields)
}

// Warn Warnレベルのログを出力
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelWarn, message, fields)
}

// Error Errorレベルのログを出力
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Log(ctx, LogLevelError, message, fields)
}

// Sugar printf形式のロガーを返す（Stripe SDKのLeveledLoggerとして利用）
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.zap.Sugar()
}

// Sync バッファされたログをフラッシュ
func (l *Logger) Sync() error {
	return l.zap.Sync()
}
