package xretry

import "context"

// RetryPolicy 决定是否继续重试。
type RetryPolicy interface {
	// MaxAttempts 返回最大尝试次数（含首次），0 表示不限。
	MaxAttempts() int

	// ShouldRetry 在第 attempt 次（从 1 开始）失败后调用。
	ShouldRetry(ctx context.Context, attempt int, err error) bool
}

// FixedRetryPolicy 最多尝试固定次数。
type FixedRetryPolicy struct {
	maxAttempts int
}

// NewFixedRetry 创建固定次数策略，maxAttempts 最小为 1。
func NewFixedRetry(maxAttempts int) *FixedRetryPolicy {
	return &FixedRetryPolicy{maxAttempts: max(maxAttempts, 1)}
}

func (p *FixedRetryPolicy) MaxAttempts() int { return p.maxAttempts }

func (p *FixedRetryPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	return ctx.Err() == nil && attempt < p.maxAttempts && IsRetryable(err)
}

// AlwaysRetryPolicy 直到成功、遇到永久错误或 context 结束。
type AlwaysRetryPolicy struct{}

// NewAlwaysRetry 创建不限次数策略。
func NewAlwaysRetry() AlwaysRetryPolicy { return AlwaysRetryPolicy{} }

func (AlwaysRetryPolicy) MaxAttempts() int { return 0 }

func (AlwaysRetryPolicy) ShouldRetry(ctx context.Context, _ int, err error) bool {
	return ctx.Err() == nil && IsRetryable(err)
}

// NeverRetryPolicy 只尝试一次。
type NeverRetryPolicy struct{}

// NewNeverRetry 创建不重试策略。
func NewNeverRetry() NeverRetryPolicy { return NeverRetryPolicy{} }

func (NeverRetryPolicy) MaxAttempts() int { return 1 }

func (NeverRetryPolicy) ShouldRetry(context.Context, int, error) bool { return false }

var (
	_ RetryPolicy = (*FixedRetryPolicy)(nil)
	_ RetryPolicy = AlwaysRetryPolicy{}
	_ RetryPolicy = NeverRetryPolicy{}
)
