package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// requestFields are the per-request values every log line of a request carries.
type requestFields struct {
	requestID string
	clientIP  string
	userID    string
	role      string
}

// Config selects level, encoding and the service name stamped on every entry.
type Config struct {
	Level    string
	Encoding string
	Service  string
}

// New builds the service logger. Unknown levels fall back to info.
func New(cfg Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Sampling = nil
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.Encoding == "console" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if cfg.Service != "" {
		zcfg.InitialFields = map[string]interface{}{"service": cfg.Service}
	}

	return zcfg.Build(zap.AddCaller())
}

func fieldsFrom(ctx context.Context) requestFields {
	if ctx == nil {
		return requestFields{}
	}
	f, _ := ctx.Value(ctxKey{}).(requestFields)
	return f
}

// ContextWithRequest records the request id and client address for later log lines.
func ContextWithRequest(ctx context.Context, requestID, clientIP string) context.Context {
	f := fieldsFrom(ctx)
	f.requestID = requestID
	f.clientIP = clientIP
	return context.WithValue(ctx, ctxKey{}, f)
}

// ContextWithCaller records the authenticated user and active role.
func ContextWithCaller(ctx context.Context, userID, role string) context.Context {
	f := fieldsFrom(ctx)
	f.userID = userID
	f.role = role
	return context.WithValue(ctx, ctxKey{}, f)
}

// RequestID returns the id stored by ContextWithRequest.
func RequestID(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

// FromContext enriches base with whatever request fields ctx carries.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	f := fieldsFrom(ctx)
	fields := make([]zap.Field, 0, 4)
	if f.requestID != "" {
		fields = append(fields, zap.String("request_id", f.requestID))
	}
	if f.clientIP != "" {
		fields = append(fields, zap.String("client_ip", f.clientIP))
	}
	if f.userID != "" {
		fields = append(fields, zap.String("user_id", f.userID), zap.String("role", f.role))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
