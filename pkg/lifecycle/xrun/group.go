package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

// Group 基于 errgroup 管理一组服务：任一服务返回错误时取消其余服务。
//
// Go、GoWithName、Cancel 可并发调用，Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 context 在任一服务失败或 Cancel 时取消。
// nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     applyOptions(opts),
	}, egCtx
}

// Go 在新 goroutine 中运行 fn。fn 返回非 nil 错误会取消整个 Group。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 同 Go，并以 name 记录服务的启停日志。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.logger.Debug(g.ctx, "service starting", attrs...)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.opts.logger.Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Wait 等待全部服务结束并返回第一个错误。
//
// Group 被 Cancel(cause) 或信号取消时返回该 cause（如 *SignalError）；
// 普通取消产生的 context.Canceled 被过滤为 nil。服务内部自行产生的
// context.Canceled 原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.opts.logger.Debug(context.Background(), "all services stopped", slog.String("group", g.opts.name))

	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() == nil {
			return err
		}
		return g.explicitCause()
	}
	if err == nil && g.causeCtx.Err() != nil {
		return g.explicitCause()
	}
	return err
}

func (g *Group) explicitCause() error {
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Cancel 取消全部服务，cause 由 Wait 返回。cause 不应包装 context.Canceled，
// 否则会被当作普通取消过滤。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// runGroup 是 Run 系列函数的共享实现：除非禁用，先注册信号监听服务，
// 收到信号后以 *SignalError 取消 Group。
func runGroup(ctx context.Context, opts []Option, setup func(g *Group)) error {
	g, _ := NewGroup(ctx, opts...)

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go(func(ctx context.Context) error {
			testc := testSigChan(ctx)
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, signals...)
			defer signal.Stop(sigCh)

			var sig os.Signal
			select {
			case sig = <-testc:
			case sig = <-sigCh:
			case <-ctx.Done():
				return ctx.Err()
			}
			g.opts.logger.Info(ctx, "received signal",
				slog.String("group", g.opts.name), slog.String("signal", sig.String()))
			g.cancel(&SignalError{Signal: sig})
			return nil
		})
	}

	setup(g)
	return g.Wait()
}

// Run 运行服务直到全部退出、任一失败或收到信号。信号退出返回 *SignalError。
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 同 Run，支持选项。
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			g.Go(svc)
		}
	})
}

// Service 是可由 RunServices 管理的服务。Run 阻塞直到 ctx 取消或出错。
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc 把函数适配为 Service。
type ServiceFunc func(ctx context.Context) error

// Run 实现 Service。
func (f ServiceFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// RunServices 同 Run，接受 Service。nil Service 使 Group 以 ErrNilService 失败。
func RunServices(ctx context.Context, services ...Service) error {
	return RunServicesWithOptions(ctx, nil, services...)
}

// RunServicesWithOptions 同 RunServices，支持选项。
func RunServicesWithOptions(ctx context.Context, opts []Option, services ...Service) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			if svc == nil {
				g.Go(func(context.Context) error { return ErrNilService })
				continue
			}
			g.Go(svc.Run)
		}
	})
}
