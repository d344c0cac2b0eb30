// Package xbreaker 基于 sony/gobreaker 提供熔断器，用于在依赖（如目录服务）
// 持续不可用时快速失败。
//
// 熔断错误实现 Retryable() == false，与 xretry 组合时不会被重试：
//
//	b := xbreaker.New("registry", xbreaker.WithConsecutiveFailures(3))
//	exec := xbreaker.Guard(b, xretry.NewRetryer())
//	err := exec.Do(ctx, connect)
package xbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

// State 熔断器状态。
type State = gobreaker.State

// Counts 统计窗口内的请求计数。
type Counts = gobreaker.Counts

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

const (
	defaultConsecutiveFailures = 5
	defaultTimeout             = 30 * time.Second
)

// Breaker 是命名熔断器，并发安全。
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[any]
}

type options struct {
	failures    uint32
	timeout     time.Duration
	interval    time.Duration
	maxRequests uint32
	logger      xlog.Logger
}

// Option 配置 Breaker。
type Option func(*options)

// WithConsecutiveFailures 连续失败 n 次后打开，默认 5，零值被忽略。
func WithConsecutiveFailures(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.failures = n
		}
	}
}

// WithTimeout 打开状态持续多久后进入半开，默认 30s。
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithInterval 关闭状态下清零计数的周期，零值表示不清零。
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.interval = d
		}
	}
}

// WithMaxRequests 半开状态允许通过的请求数，默认 1。
func WithMaxRequests(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRequests = n
		}
	}
}

// WithLogger 设置状态变化日志，默认 xlog.Default()。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New 创建熔断器。ctx 取消导致的失败不计入统计。
func New(name string, opts ...Option) *Breaker {
	o := &options{
		failures:    defaultConsecutiveFailures,
		timeout:     defaultTimeout,
		maxRequests: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = xlog.Default()
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: o.maxRequests,
		Interval:    o.interval,
		Timeout:     o.timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= o.failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			o.logger.Warn(context.Background(), "breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &Breaker{name: name, cb: gobreaker.NewCircuitBreaker[any](st)}
}

// Do 在熔断器保护下执行 fn。打开状态下不执行 fn，返回 *BreakerError。
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if b == nil {
		return ErrNilBreaker
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	return b.wrap(err)
}

// Name 返回熔断器名称。
func (b *Breaker) Name() string { return b.name }

// State 返回当前状态。
func (b *Breaker) State() State { return b.cb.State() }

// Counts 返回当前计数。
func (b *Breaker) Counts() Counts { return b.cb.Counts() }
