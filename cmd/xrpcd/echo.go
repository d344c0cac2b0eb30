package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/observability/xmetrics"
	"github.com/omeyang/xrpc/pkg/rpc/xtracing"
	"github.com/omeyang/xrpc/pkg/transport/xacceptor"
)

const echoServiceName = "Echo"

const (
	// maxLineSize 单行请求上限。
	maxLineSize = 64 * 1024
	// writeTimeout 单次回写上限，避免不读取的客户端长期占用 worker。
	writeTimeout = 10 * time.Second
)

// EchoService 是 xrpcd 默认发布的服务。
type EchoService struct{}

// Echo 原样返回 msg。
func (*EchoService) Echo(msg string) string { return msg }

// Ping 返回 "pong"。
func (*EchoService) Ping() string { return "pong" }

// echoHandler 按行回显请求。连接 goroutine 只负责读取，
// 每行作为一个请求提交给执行器，由 worker 回写并记录提供端事件。
// 同一连接同一时刻只有一个请求在执行器中，回复顺序与请求一致。
type echoHandler struct {
	svc      *EchoService
	ids      *xtracing.InvokeIDGenerator
	recorder xtracing.Recorder
	observer xmetrics.Observer
	logger   xlog.Logger
}

func newEchoHandler(ids *xtracing.InvokeIDGenerator, recorder xtracing.Recorder,
	observer xmetrics.Observer, logger xlog.Logger) *echoHandler {
	if recorder == nil {
		recorder = xtracing.Nop{}
	}
	if logger == nil {
		logger = xlog.Default()
	}
	return &echoHandler{svc: &EchoService{}, ids: ids, recorder: recorder, observer: observer, logger: logger}
}

// ServeConn 实现 xacceptor.ConnHandler。ctx 取消时关闭连接以打断读取。
func (h *echoHandler) ServeConn(ctx context.Context, conn net.Conn, sub xacceptor.Submitter) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() { _ = conn.Close() }()

	r := bufio.NewScanner(conn)
	r.Buffer(make([]byte, 0, 4096), maxLineSize)
	w := bufio.NewWriter(conn)
	for r.Scan() {
		msg := r.Text()
		done := make(chan struct{})
		err := sub.Execute(func() {
			defer close(done)
			h.handle(ctx, conn, w, msg)
		})
		if err != nil {
			h.logger.Debug(ctx, "echo request rejected", xlog.Err(err))
			return
		}
		// 执行器关闭时会先执行完已提交的任务，这里不会永久阻塞。
		<-done
	}
	if err := r.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		h.logger.Debug(ctx, "echo read", xlog.Err(err))
	}
}

// handle 在执行器上处理一行请求：回写并在请求 span 上记录提供端事件。
func (h *echoHandler) handle(ctx context.Context, conn net.Conn, w *bufio.Writer, msg string) {
	start := time.Now()
	ctx, span := xmetrics.Start(ctx, h.observer, xmetrics.SpanOptions{
		Component: "xrpcd",
		Operation: echoServiceName + ".Echo",
		Kind:      xmetrics.KindServer,
	})

	reply := h.svc.Echo(msg)
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := w.WriteString(reply + "\n")
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		h.logger.Debug(ctx, "echo write", xlog.Err(err))
	} else {
		h.record(ctx, conn, time.Since(start))
	}
	span.End(xmetrics.Result{Err: err})
}

func (h *echoHandler) record(ctx context.Context, conn net.Conn, elapsed time.Duration) {
	ev := xtracing.ProviderEvent{
		Call:         echoServiceName + ".Echo",
		CallInfo:     addrString(conn.RemoteAddr()),
		ElapsedNanos: elapsed.Nanoseconds(),
		Destination:  addrString(conn.LocalAddr()),
	}
	if h.ids != nil {
		id, err := h.ids.Next()
		if err != nil {
			h.logger.Debug(ctx, "invoke id", xlog.Err(err))
		}
		ev.InvokeID = id
	}
	h.recorder.Record(ctx, ev)
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
