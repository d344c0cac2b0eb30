package xacceptor

import (
	"context"
	"net"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/registry/xdirectory"
)

// Directory 是 Acceptor 使用的目录服务句柄。
type Directory interface {
	Publish(ctx context.Context, rec xdirectory.Record) error
	Unpublish(ctx context.Context, rec xdirectory.Record) error
	Close() error
}

var _ Directory = (*xdirectory.Client)(nil)

// Connector 建立到 addr 的目录连接，应遵守 ctx 的取消与超时。
type Connector func(ctx context.Context, addr string) (Directory, error)

// EtcdConnector 返回基于 xdirectory 的 Connector。
func EtcdConnector(opts ...xdirectory.Option) Connector {
	return func(ctx context.Context, addr string) (Directory, error) {
		c, err := xdirectory.Connect(ctx, addr, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Submitter 把一个已解码的请求提交给 Acceptor 的执行器。
// 执行器饱和时按其等待策略阻塞，Acceptor 关闭后返回错误。
type Submitter interface {
	Execute(task func()) error
}

// ConnHandler 处理一个已接受的连接，负责关闭它。
// ServeConn 运行在该连接专属的 goroutine 上，可以阻塞于读写；
// 每个请求的处理应经 sub 提交，而不是在 ServeConn 中完成。
// ctx 在 Acceptor 关闭时取消。
type ConnHandler interface {
	ServeConn(ctx context.Context, conn net.Conn, sub Submitter)
}

// ConnHandlerFunc 把函数适配为 ConnHandler。
type ConnHandlerFunc func(ctx context.Context, conn net.Conn, sub Submitter)

// ServeConn 实现 ConnHandler。
func (f ConnHandlerFunc) ServeConn(ctx context.Context, conn net.Conn, sub Submitter) {
	f(ctx, conn, sub)
}

// closeHandler 是默认处理器：编解码层不在本包内，直接关闭连接。
type closeHandler struct {
	logger xlog.Logger
}

func (h closeHandler) ServeConn(ctx context.Context, conn net.Conn, _ Submitter) {
	if err := conn.Close(); err != nil {
		h.logger.Debug(ctx, "close connection", xlog.Addr(conn.RemoteAddr().String()), xlog.Err(err))
	}
}
