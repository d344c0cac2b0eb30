package xdispatch

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Option 定义 Dispatcher 可选配置函数类型。
type Option func(*options)

type options struct {
	logger        *slog.Logger
	name          string
	strategy      WaitStrategyType
	meterProvider metric.MeterProvider
}

func defaultOptions() options {
	return options{
		logger:        slog.Default(),
		strategy:      LiteBlockingWait,
		meterProvider: otel.GetMeterProvider(),
	}
}

// WithLogger 设置日志记录器，用于记录 worker panic。
// 默认使用 slog.Default()。传入 nil 将被忽略。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置分发器名称，用于日志与指标区分多个实例。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithWaitStrategy 设置等待策略，默认 [LiteBlockingWait]。
// 目录外的值按默认策略处理。
func WithWaitStrategy(typ WaitStrategyType) Option {
	return func(o *options) {
		if _, ok := strategyNames[typ]; ok {
			o.strategy = typ
		}
	}
}

// WithMeterProvider 设置 OTel MeterProvider，默认使用全局 provider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		if provider != nil {
			o.meterProvider = provider
		}
	}
}
