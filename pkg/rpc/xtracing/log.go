package xtracing

import (
	"context"
	"log/slog"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

// LogRecorder 以 Info 级别把事件写入日志。
type LogRecorder struct {
	logger    xlog.Logger
	formatter Formatter
}

// LogOption 配置 LogRecorder。
type LogOption func(*LogRecorder)

// WithLogger 设置日志记录器，nil 被忽略。默认每次记录时取 xlog.Default()。
func WithLogger(logger xlog.Logger) LogOption {
	return func(r *LogRecorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFormatter 设置格式化器，nil 被忽略。默认 TextFormatter。
func WithFormatter(f Formatter) LogOption {
	return func(r *LogRecorder) {
		if f != nil {
			r.formatter = f
		}
	}
}

// NewLogRecorder 创建 LogRecorder。
func NewLogRecorder(opts ...LogOption) *LogRecorder {
	r := &LogRecorder{formatter: TextFormatter{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record 实现 Recorder。Info 级别关闭时在格式化之前返回。
func (r *LogRecorder) Record(ctx context.Context, ev Event) {
	if ev == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := r.logger
	if logger == nil {
		logger = xlog.Default()
	}
	if !xlog.IsEnabled(ctx, logger, xlog.LevelInfo) {
		return
	}
	defer func() { _ = recover() }()

	msg := r.formatter.Format(ev)
	if msg == "" {
		return
	}
	logger.Info(ctx, msg, slog.String("role", ev.Role().String()))
}
