package xretry

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// Executor 抽象重试执行，便于调用方在测试中替换。
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Retryer 组合重试策略与退避策略。零值可用（3 次，指数退避）。
type Retryer struct {
	retryPolicy   RetryPolicy
	backoffPolicy BackoffPolicy
	onRetry       func(attempt int, err error)
}

var _ Executor = (*Retryer)(nil)

// RetryerOption 配置 Retryer。
type RetryerOption func(*Retryer)

// WithRetryPolicy 设置重试策略，nil 被忽略。
func WithRetryPolicy(p RetryPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.retryPolicy = p
		}
	}
}

// WithBackoffPolicy 设置退避策略，nil 被忽略。
func WithBackoffPolicy(p BackoffPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.backoffPolicy = p
		}
	}
}

// WithOnRetry 设置每次失败后（即将重试前）的回调，attempt 从 1 开始。
func WithOnRetry(f func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// NewRetryer 创建 Retryer。
func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do 执行 fn 直到成功、策略放弃或 ctx 结束，返回最后一次错误。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(r.options(ctx)...).Do(func() error {
		return fn(ctx)
	})
}

func (r *Retryer) options(ctx context.Context) []retry.Option {
	policy := r.retryPolicy
	if policy == nil {
		policy = NewFixedRetry(3)
	}
	backoff := r.backoffPolicy
	if backoff == nil {
		backoff = NewExponentialBackoff()
	}

	opts := []retry.Option{retry.Context(ctx), retry.LastErrorOnly(true)}
	if n := policy.MaxAttempts(); n > 0 {
		opts = append(opts, retry.Attempts(uint(n)))
	} else {
		opts = append(opts, retry.UntilSucceeded())
	}

	var failures atomic.Int64
	opts = append(opts,
		retry.RetryIf(func(err error) bool {
			return policy.ShouldRetry(ctx, int(failures.Add(1)), err)
		}),
		// retry-go 的 n 从 1 开始，与 NextDelay 一致
		retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
			return backoff.NextDelay(uintToInt(n))
		}),
	)
	if r.onRetry != nil {
		// OnRetry 的 n 从 0 开始
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			r.onRetry(uintToInt(n)+1, err)
		}))
	}
	return opts
}

func uintToInt(n uint) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}
