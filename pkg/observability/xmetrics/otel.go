package xmetrics

import (
	"cmp"
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xrpc/xmetrics"
	unknown                    = "unknown"

	metricOperationTotal    = "xrpc.operation.total"
	metricOperationDuration = "xrpc.operation.duration"
)

type otelConfig struct {
	instrumentationName string
	tracerProvider      trace.TracerProvider
	meterProvider       metric.MeterProvider
}

// Option 配置 OTel Observer。
type Option func(*otelConfig)

// WithInstrumentationName 设置 instrumentation 名称，空串被忽略。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithTracerProvider 设置 TracerProvider，默认使用全局 provider。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认使用全局 provider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		tracerProvider:      otel.GetTracerProvider(),
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)
	total, err := meter.Int64Counter(metricOperationTotal,
		metric.WithDescription("total operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}
	duration, err := meter.Float64Histogram(metricOperationDuration,
		metric.WithDescription("operation duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create histogram failed: %w", err)
	}

	return &otelObserver{
		tracer:   cfg.tracerProvider.Tracer(cfg.instrumentationName),
		total:    total,
		duration: duration,
	}, nil
}

type otelObserver struct {
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func (o *otelObserver) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	component := cmp.Or(opts.Component, unknown)
	operation := cmp.Or(opts.Operation, unknown)

	attrs := append([]attribute.KeyValue{
		attribute.String("component", component),
		attribute.String("operation", operation),
	}, toOTel(opts.Attrs)...)

	ctx, span := o.tracer.Start(ctx, operation,
		trace.WithSpanKind(spanKind(opts.Kind)),
		trace.WithAttributes(attrs...))

	return ctx, &otelSpan{
		span:      span,
		observer:  o,
		ctx:       ctx,
		component: component,
		operation: operation,
		start:     time.Now(),
	}
}

type otelSpan struct {
	span      trace.Span
	observer  *otelObserver
	ctx       context.Context
	component string
	operation string
	start     time.Time
	endOnce   sync.Once
}

func (s *otelSpan) End(result Result) {
	s.endOnce.Do(func() {
		status := resolveStatus(result)
		if result.Err != nil {
			s.span.RecordError(result.Err)
		}
		if status == StatusError {
			msg := "operation failed"
			if result.Err != nil {
				msg = result.Err.Error()
			}
			s.span.SetStatus(codes.Error, msg)
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
		if len(result.Attrs) > 0 {
			s.span.SetAttributes(toOTel(result.Attrs)...)
		}
		s.span.End()

		// 请求 context 可能已取消，指标仍需记录
		ctx := context.WithoutCancel(s.ctx)
		set := metric.WithAttributes(
			attribute.String("component", s.component),
			attribute.String("operation", s.operation),
			attribute.String("status", string(status)),
		)
		s.observer.total.Add(ctx, 1, set)
		s.observer.duration.Record(ctx, time.Since(s.start).Seconds(), set)
	})
}

func spanKind(k Kind) trace.SpanKind {
	switch k {
	case KindServer:
		return trace.SpanKindServer
	case KindClient:
		return trace.SpanKindClient
	default:
		return trace.SpanKindInternal
	}
}

func toOTel(attrs []Attr) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "" || a.Value == nil {
			continue
		}
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		case int:
			out = append(out, attribute.Int(a.Key, v))
		case int64:
			out = append(out, attribute.Int64(a.Key, v))
		case time.Duration:
			out = append(out, attribute.Int64(a.Key, v.Nanoseconds()))
		default:
			out = append(out, attribute.String(a.Key, fmt.Sprint(v)))
		}
	}
	return out
}
