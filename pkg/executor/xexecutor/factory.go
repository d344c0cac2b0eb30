package xexecutor

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xrpc/pkg/executor/xdispatch"
	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

// Executor 异步执行提交的任务。
type Executor interface {
	// Execute 提交任务，执行器饱和时按其背压策略等待。
	Execute(task func()) error
	// Shutdown 停止接收任务并等待已提交任务完成。
	Shutdown(ctx context.Context) error
	// Close 等价于 Shutdown(context.Background())。
	Close() error
}

// Factory 按并行度构造执行器。
type Factory interface {
	NewExecutor(parallelism int) (Executor, error)
}

// Option 配置 DispatcherFactory。
type Option func(*DispatcherFactory)

// WithName 设置执行器名称，用于日志与指标。
func WithName(name string) Option {
	return func(f *DispatcherFactory) {
		f.name = name
	}
}

// WithLogger 设置日志记录器，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(f *DispatcherFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMeterProvider 设置分发器指标使用的 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(f *DispatcherFactory) {
		f.meterProvider = provider
	}
}

// WithSettings 固定使用给定参数，不再读取进程级参数。
func WithSettings(s Settings) Option {
	return func(f *DispatcherFactory) {
		f.settings = &s
	}
}

// DispatcherFactory 基于 xdispatch 构造执行器。
type DispatcherFactory struct {
	name          string
	logger        xlog.Logger
	meterProvider metric.MeterProvider
	settings      *Settings
}

var _ Factory = (*DispatcherFactory)(nil)

// NewDispatcherFactory 创建工厂。
func NewDispatcherFactory(opts ...Option) *DispatcherFactory {
	f := &DispatcherFactory{logger: xlog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewExecutor 构造执行器：worker 数为 min(parallelism, MaxWorkers)，
// 容量与等待策略取自参数。parallelism 非正时返回 [ErrInvalidParallelism]。
func (f *DispatcherFactory) NewExecutor(parallelism int) (Executor, error) {
	if parallelism <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidParallelism, parallelism)
	}

	s := CurrentSettings()
	if f.settings != nil {
		s = *f.settings
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	strategy := f.resolveStrategy(s.WaitStrategy)
	opts := []xdispatch.Option{
		xdispatch.WithName(f.name),
		xdispatch.WithLogger(xlog.Slog(f.logger)),
		xdispatch.WithWaitStrategy(strategy),
	}
	if f.meterProvider != nil {
		opts = append(opts, xdispatch.WithMeterProvider(f.meterProvider))
	}

	d, err := xdispatch.New(min(parallelism, s.MaxWorkers), s.QueueCapacity, opts...)
	if err != nil {
		return nil, err
	}
	return dispatcherExecutor{d}, nil
}

// resolveStrategy 未设置或无法识别时回退为默认策略，仅对后者告警。
func (f *DispatcherFactory) resolveStrategy(name string) xdispatch.WaitStrategyType {
	strategy, ok := xdispatch.ParseWaitStrategy(name)
	if !ok && name != "" {
		f.logger.Warn(context.Background(), "unknown wait strategy, using default",
			slog.String("wait_strategy", name),
			slog.String("default", strategy.String()))
	}
	return strategy
}

// dispatcherExecutor 将 func() 适配为 xdispatch.Task。
type dispatcherExecutor struct {
	*xdispatch.Dispatcher
}

func (e dispatcherExecutor) Execute(task func()) error {
	if task == nil {
		return xdispatch.ErrNilTask
	}
	return e.Dispatcher.Execute(task)
}

// Dispatcher 返回执行器底层的分发器，非 xdispatch 实现时返回 nil。
func Dispatcher(e Executor) *xdispatch.Dispatcher {
	if de, ok := e.(dispatcherExecutor); ok {
		return de.Dispatcher
	}
	return nil
}
