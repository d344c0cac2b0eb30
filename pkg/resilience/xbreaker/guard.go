package xbreaker

import (
	"context"

	"github.com/omeyang/xrpc/pkg/resilience/xretry"
)

// guarded 把一次完整的重试序列视为熔断器的一个请求。
type guarded struct {
	b     *Breaker
	inner xretry.Executor
}

// Guard 返回受 b 保护的 xretry.Executor：inner 的全部重试耗尽才记一次失败，
// 熔断打开后 Do 立即返回 *BreakerError。inner 为 nil 时使用 xretry.NewRetryer()。
func Guard(b *Breaker, inner xretry.Executor) xretry.Executor {
	if inner == nil {
		inner = xretry.NewRetryer()
	}
	return &guarded{b: b, inner: inner}
}

func (g *guarded) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return g.b.Do(ctx, func(ctx context.Context) error {
		return g.inner.Do(ctx, fn)
	})
}
