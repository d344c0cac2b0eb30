package xrun

import (
	"context"
	"os"
	"syscall"
	"time"
)

// DefaultSignals 返回 SIGHUP、SIGINT、SIGTERM、SIGQUIT。每次返回新切片。
func DefaultSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
}

// testSigChanKey 让测试经 context 注入信号，无需向进程发送真实信号。
type testSigChanKey struct{}

func testSigChan(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	return c
}

func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}

// WaitForDone 返回阻塞到 ctx 取消的服务，用于让 Group 保持运行。
func WaitForDone() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
}

// ShutdownOnDone 返回一个服务：ctx 取消后调用 shutdown，并以 timeout 限制其耗时。
// timeout 非正表示不限时。shutdown 的错误作为服务结果返回。
//
//	g.Go(xrun.ShutdownOnDone(acceptor.Shutdown, 10*time.Second))
func ShutdownOnDone(shutdown func(ctx context.Context) error, timeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if shutdown == nil {
			return ErrNilFunc
		}
		<-ctx.Done()
		stopCtx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			stopCtx, cancel = context.WithTimeout(stopCtx, timeout)
			defer cancel()
		}
		return shutdown(stopCtx)
	}
}
