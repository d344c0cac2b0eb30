package xretry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffPolicy 计算第 attempt 次（从 1 开始）失败后的等待时间。
type BackoffPolicy interface {
	NextDelay(attempt int) time.Duration
}

// FixedBackoff 固定间隔。
type FixedBackoff time.Duration

// NextDelay 实现 BackoffPolicy。
func (b FixedBackoff) NextDelay(int) time.Duration {
	return max(time.Duration(b), 0)
}

// ExponentialBackoff 指数退避：
// delay = min(initial * multiplier^(attempt-1) * (1 ± jitter), maxDelay)
type ExponentialBackoff struct {
	initial    time.Duration
	maxDelay   time.Duration
	multiplier float64
	jitter     float64
}

// ExponentialOption 配置 ExponentialBackoff。
type ExponentialOption func(*ExponentialBackoff)

// WithInitialDelay 设置首次等待时间，非正值被忽略。
func WithInitialDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.initial = d
		}
	}
}

// WithMaxDelay 设置等待上限，非正值被忽略。
func WithMaxDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.maxDelay = d
		}
	}
}

// WithMultiplier 设置增长倍数，小于 1 的值被忽略。
func WithMultiplier(m float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if m >= 1 {
			b.multiplier = m
		}
	}
}

// WithJitter 设置抖动比例，截断到 [0, 1]。
func WithJitter(j float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		b.jitter = min(max(j, 0), 1)
	}
}

// NewExponentialBackoff 创建指数退避，默认 100ms 起步、上限 5s、倍数 2、抖动 10%。
func NewExponentialBackoff(opts ...ExponentialOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initial:    100 * time.Millisecond,
		maxDelay:   5 * time.Second,
		multiplier: 2,
		jitter:     0.1,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.maxDelay = max(b.maxDelay, b.initial)
	return b
}

// NextDelay 实现 BackoffPolicy。
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	attempt = max(attempt, 1)
	delay := float64(b.initial) * math.Pow(b.multiplier, float64(attempt-1))
	if b.jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*b.jitter
	}
	// 溢出为 Inf 或 NaN 时比较恒为 false，单独处理
	if math.IsNaN(delay) || math.IsInf(delay, 0) || delay >= float64(b.maxDelay) {
		return b.maxDelay
	}
	return max(time.Duration(delay), 0)
}

var (
	_ BackoffPolicy = FixedBackoff(0)
	_ BackoffPolicy = (*ExponentialBackoff)(nil)
)
