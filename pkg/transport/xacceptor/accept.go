package xacceptor

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/omeyang/xrpc/pkg/executor/xexecutor"
	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

// acceptBackoff 管理 Accept 错误时的指数退避。
type acceptBackoff struct {
	current time.Duration
	initial time.Duration
	max     time.Duration
}

func newAcceptBackoff() *acceptBackoff {
	return &acceptBackoff{
		initial: 5 * time.Millisecond,
		max:     time.Second,
		current: 5 * time.Millisecond,
	}
}

func (b *acceptBackoff) reset() { b.current = b.initial }

func (b *acceptBackoff) next() time.Duration {
	d := b.current
	b.current = min(b.current*2, b.max)
	return d
}

// acceptLoop 接受连接直到监听器关闭。
func (a *Acceptor) acceptLoop(ln net.Listener, exec xexecutor.Executor) {
	defer a.wg.Done()

	backoff := newAcceptBackoff()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			a.opts.logger.Warn(a.serveCtx, "accept failed", xlog.Port(a.port), xlog.Err(err))
			timer := time.NewTimer(backoff.next())
			select {
			case <-a.quit:
				timer.Stop()
				return
			case <-timer.C:
			}
			continue
		}
		backoff.reset()
		a.dispatch(conn, exec)
	}
}

// dispatch 设置连接选项后在独立 goroutine 上运行连接处理器。
// 读写阻塞只占用该 goroutine，解码出的请求经 submitter 在执行器上处理。
func (a *Acceptor) dispatch(conn net.Conn, exec xexecutor.Executor) {
	if err := applyChildOptions(conn, a.opts.group.Child); err != nil {
		a.opts.logger.Warn(a.serveCtx, "apply connection options failed",
			xlog.Addr(conn.RemoteAddr().String()), xlog.Err(err))
	}
	a.metrics.addAccepted()
	sub := &submitter{exec: exec, metrics: a.metrics, logger: a.opts.logger, ctx: a.serveCtx}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.opts.handler.ServeConn(a.serveCtx, conn, sub)
	}()
}

// submitter 把请求交给 Acceptor 的执行器，统计被拒绝的请求。
type submitter struct {
	exec    xexecutor.Executor
	metrics *instruments
	logger  xlog.Logger
	ctx     context.Context
}

func (s *submitter) Execute(task func()) error {
	if err := s.exec.Execute(task); err != nil {
		s.metrics.addRejected()
		s.logger.Debug(s.ctx, "request rejected", xlog.Err(err))
		return err
	}
	return nil
}
