package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const lokiPushPath = "/loki/api/v1/push"

// Logger writes structured logs with trace correlation and, when a Loki
// URL is configured, forwards each entry to Loki.
type Logger struct {
	*otelzap.Logger
	ServiceName string
	lokiURL     string
	httpClient  *http.Client
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func New(serviceName, lokiURL string) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := config.Build()

	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return Wrap(zapLogger, serviceName, lokiURL), nil
}

// Wrap builds a Logger around an existing zap logger.
func Wrap(zapLogger *zap.Logger, serviceName, lokiURL string) *Logger {
	l := &Logger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: serviceName,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}

	if lokiURL != "" {
		l.lokiURL = strings.TrimRight(lokiURL, "/") + lokiPushPath
	}

	return l
}

func NewNop() *Logger {
	return Wrap(zap.NewNop(), "test", "")
}

func (l *Logger) LokiEnabled() bool {
	return l.lokiURL != ""
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	fields = append(fields, zap.String("service", l.ServiceName))

	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, fields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, fields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, fields...)
	}

	if l.LokiEnabled() {
		go l.Push(context.WithoutCancel(ctx), level, msg, fields)
	}
}

// Push sends one entry to Loki. Failures are dropped after a local warning.
func (l *Logger) Push(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	line, err := encodeLine(ctx, level, msg, fields)

	if err != nil {
		l.Logger.Ctx(ctx).Warn("Failed to encode Loki entry", zap.Error(err))
		return
	}

	body, err := json.Marshal(lokiPush{
		Streams: []lokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(time.Now().UnixNano(), 10), line},
				},
			},
		},
	})

	if err != nil {
		l.Logger.Ctx(ctx).Warn("Failed to encode Loki entry", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.lokiURL, bytes.NewReader(body))

	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)

	if err != nil {
		l.Logger.Warn("Failed to push to Loki", zap.Error(err))
		return
	}

	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
}

// encodeLine renders the entry with zap's JSON encoder so field types survive.
func encodeLine(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) (string, error) {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})

	if span := trace.SpanFromContext(ctx).SpanContext(); span.IsValid() {
		fields = append(fields,
			zap.String("trace_id", span.TraceID().String()),
			zap.String("span_id", span.SpanID().String()),
		)
	}

	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:   level,
		Time:    time.Now(),
		Message: msg,
	}, fields)

	if err != nil {
		return "", err
	}

	defer buf.Free()

	return strings.TrimSpace(buf.String()), nil
}
