package xacceptor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/xrpc/pkg/executor/xexecutor"
	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/registry/xdirectory"
)

// Acceptor 独占一个端口的监听器，持有传输选项、服务注册表、目录连接和自有执行器。
type Acceptor struct {
	port     int
	id       string
	opts     *options
	registry *ServiceRegistry
	metrics  *instruments

	serveCtx context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	dir       Directory
	published map[string]xdirectory.Record
	exec      xexecutor.Executor
	ln        net.Listener
	closed    bool

	quit chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New 创建端口为 port 的 Acceptor。port 为 0 时由系统在 Start 时分配，
// 之后通过 Port 获取；此时 Publish 必须在 Start 之后调用。
func New(port int, opts ...Option) (*Acceptor, error) {
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	id := uuid.NewString()
	if o.handler == nil {
		o.handler = closeHandler{logger: o.logger}
	}
	if o.factory == nil {
		o.factory = xexecutor.NewDispatcherFactory(
			xexecutor.WithName("acceptor-"+strconv.Itoa(port)),
			xexecutor.WithLogger(o.logger),
			xexecutor.WithMeterProvider(o.meterProvider),
		)
	}
	if o.registry == nil {
		o.registry = NewServiceRegistry()
	}
	metrics, err := newInstruments(o.meterProvider, port, id)
	if err != nil {
		return nil, err
	}

	serveCtx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		port:      port,
		id:        id,
		opts:      o,
		registry:  o.registry,
		metrics:   metrics,
		serveCtx:  serveCtx,
		cancel:    cancel,
		published: make(map[string]xdirectory.Record),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Registry 返回服务注册表。
func (a *Acceptor) Registry() *ServiceRegistry { return a.registry }

// ID 返回实例 id（uuid），随记录一起发布。
func (a *Acceptor) ID() string { return a.id }

// Port 返回监听端口。启动前返回构造时的端口。
func (a *Acceptor) Port() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ln != nil {
		if addr, ok := a.ln.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return a.port
}

// Addr 返回监听地址，未启动时返回 nil。
func (a *Acceptor) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Done 在 Shutdown 完成后关闭。
func (a *Acceptor) Done() <-chan struct{} { return a.done }

// ConnectToRegistryServer 连接 addr 上的目录服务器，失败按重试策略重试。
// ctx 取消会中断连接与重试；失败返回包装了原因的 [ErrConnectivity]。
func (a *Acceptor) ConnectToRegistryServer(ctx context.Context, addr string) error {
	if ctx == nil {
		return ErrNilContext
	}
	a.mu.Lock()
	err := a.connectableLocked()
	a.mu.Unlock()
	if err != nil {
		return err
	}

	start := time.Now()
	var dir Directory
	err = a.opts.retryer.Do(ctx, func(ctx context.Context) error {
		d, err := a.opts.connector(ctx, addr)
		if err != nil {
			return err
		}
		dir = d
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: connect %s: %w", ErrConnectivity, addr, err)
	}

	a.mu.Lock()
	if err := a.connectableLocked(); err != nil {
		a.mu.Unlock()
		return errors.Join(err, dir.Close())
	}
	a.dir = dir
	a.mu.Unlock()

	a.opts.logger.Info(ctx, "connected to directory server",
		xlog.Addr(addr), xlog.Port(a.port), xlog.Duration(time.Since(start)))
	return nil
}

func (a *Acceptor) connectableLocked() error {
	switch {
	case a.closed:
		return ErrClosed
	case a.dir != nil:
		return ErrAlreadyConnected
	}
	return nil
}

// Publish 把服务记录发布到目录。未指定 wrappers 时发布注册表中的全部服务。
// 同一服务重复发布会覆盖之前的记录。以端口 0 创建时须先 Start，否则返回 [ErrPortUnbound]。
func (a *Acceptor) Publish(ctx context.Context, wrappers ...*ServiceWrapper) error {
	if ctx == nil {
		return ErrNilContext
	}
	a.mu.Lock()
	dir, closed := a.dir, a.closed
	a.mu.Unlock()
	switch {
	case closed:
		return ErrClosed
	case dir == nil:
		return ErrNotConnected
	}

	if len(wrappers) == 0 {
		wrappers = a.registry.All()
	}
	host := a.opts.advertiseHost
	if host == "" {
		host = localIPv4()
	}
	port := a.Port()
	if port == 0 {
		return ErrPortUnbound
	}
	for _, w := range wrappers {
		if w == nil {
			continue
		}
		rec := w.Record(host, port, a.id)
		if err := dir.Publish(ctx, rec); err != nil {
			return fmt.Errorf("%w: publish %s: %w", ErrConnectivity, w.Key(), err)
		}
		a.mu.Lock()
		a.published[w.Key()] = rec
		a.mu.Unlock()
		a.opts.logger.Info(ctx, "service published",
			slog.String("service", w.Key()), xlog.Addr(rec.Addr()))
	}
	return nil
}

// Start 创建执行器、按 Parent 选项绑定端口并开始接受连接，监听成功后立即返回。
func (a *Acceptor) Start(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.closed:
		return ErrClosed
	case a.ln != nil:
		return ErrAlreadyStarted
	}

	exec, err := a.opts.factory.NewExecutor(a.opts.parallelism)
	if err != nil {
		return fmt.Errorf("xacceptor: create executor: %w", err)
	}
	lc := net.ListenConfig{Control: listenControl(a.opts.group.Parent)}
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(a.opts.listenHost, strconv.Itoa(a.port)))
	if err != nil {
		return errors.Join(fmt.Errorf("xacceptor: listen on port %d: %w", a.port, err), exec.Close())
	}
	a.exec = exec
	a.ln = ln

	a.wg.Add(1)
	go a.acceptLoop(ln, exec)

	a.opts.logger.Info(ctx, "acceptor started",
		xlog.Addr(ln.Addr().String()), slog.String("id", a.id))
	return nil
}

// Shutdown 按启动的逆序关闭：停止接受并释放端口、撤销已发布记录、关闭目录连接、
// 关闭执行器并等待 accept 循环退出。重复调用返回 nil。
func (a *Acceptor) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	ln, dir, exec := a.ln, a.dir, a.exec
	published := a.published
	a.published = make(map[string]xdirectory.Record)
	a.mu.Unlock()

	close(a.quit)
	var errs []error
	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, fmt.Errorf("xacceptor: close listener: %w", err))
		}
	}
	if dir != nil {
		for key, rec := range published {
			if err := dir.Unpublish(ctx, rec); err != nil {
				errs = append(errs, fmt.Errorf("xacceptor: unpublish %s: %w", key, err))
			}
		}
		if err := dir.Close(); err != nil {
			errs = append(errs, fmt.Errorf("xacceptor: close directory: %w", err))
		}
	}
	a.cancel()
	if exec != nil {
		if err := exec.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("xacceptor: shutdown executor: %w", err))
		}
	}
	a.wg.Wait()
	close(a.done)

	err := errors.Join(errs...)
	if err != nil {
		a.opts.logger.Warn(ctx, "acceptor shutdown with errors", xlog.Port(a.port), xlog.Err(err))
	} else {
		a.opts.logger.Info(ctx, "acceptor stopped", xlog.Port(a.port))
	}
	return err
}

// localIPv4 返回首个非回环的 IPv4 地址，找不到时返回 127.0.0.1。
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() {
			if ip4 := ipNet.IP.To4(); ip4 != nil && ip4.IsGlobalUnicast() {
				return ip4.String()
			}
		}
	}
	return "127.0.0.1"
}
