package xrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/observability/xmetrics"
)

// Bootstrap 是一个独立的启动任务，例如某个 Acceptor 的
// 注册、连接目录、发布、开始监听。
type Bootstrap struct {
	Name string
	Run  func(ctx context.Context) error
}

// Report 是一次 Bootstrap 尝试的结果。
type Report struct {
	Name    string
	Err     error
	Elapsed time.Duration
}

// OK 报告是否成功。
func (r Report) OK() bool { return r.Err == nil }

// Errors 合并失败报告的错误，全部成功时返回 nil。
func Errors(reports []Report) error {
	var errs []error
	for _, r := range reports {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}

// StartAll 并发运行全部 Bootstrap，所有尝试结束后按输入顺序返回报告。
// 失败与 panic 被记录在各自的 Report 中，不影响其他 Bootstrap。
func StartAll(ctx context.Context, boots ...Bootstrap) []Report {
	return StartAllWithOptions(ctx, nil, boots...)
}

// StartAllWithOptions 同 StartAll，支持 WithLogger、WithObserver、WithName。
func StartAllWithOptions(ctx context.Context, opts []Option, boots ...Bootstrap) []Report {
	if ctx == nil {
		ctx = context.Background()
	}
	o := applyOptions(opts)

	reports := make([]Report, len(boots))
	var wg sync.WaitGroup
	for i, b := range boots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = runBootstrap(ctx, o, b)
		}()
	}
	wg.Wait()

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	o.logger.Info(ctx, "bootstrap finished",
		slog.String("group", o.name),
		slog.Int("total", len(reports)),
		slog.Int("failed", failed))
	return reports
}

func runBootstrap(ctx context.Context, o *groupOptions, b Bootstrap) (report Report) {
	report.Name = b.Name
	start := time.Now()
	spanCtx, span := xmetrics.Start(ctx, o.observer, xmetrics.SpanOptions{
		Component: o.name,
		Operation: "bootstrap",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{xmetrics.String("bootstrap", b.Name)},
	})

	defer func() {
		if p := recover(); p != nil {
			report.Err = fmt.Errorf("%w: %v", ErrBootstrapPanic, p)
		}
		report.Elapsed = time.Since(start)
		span.End(xmetrics.Result{Err: report.Err})

		attrs := []slog.Attr{slog.String("bootstrap", b.Name), xlog.Duration(report.Elapsed)}
		if report.Err != nil {
			o.logger.Error(ctx, "bootstrap failed", append(attrs, xlog.Err(report.Err))...)
			return
		}
		o.logger.Info(ctx, "bootstrap completed", attrs...)
	}()

	if b.Run == nil {
		report.Err = ErrNilFunc
		return report
	}
	report.Err = b.Run(spanCtx)
	return report
}
