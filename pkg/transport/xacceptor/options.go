package xacceptor

import (
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xrpc/pkg/executor/xexecutor"
	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/resilience/xretry"
	"github.com/omeyang/xrpc/pkg/transport/xoption"
)

type options struct {
	connector     Connector
	handler       ConnHandler
	logger        xlog.Logger
	factory       xexecutor.Factory
	parallelism   int
	advertiseHost string
	listenHost    string
	retryer       xretry.Executor
	group         xoption.Group
	registry      *ServiceRegistry
	meterProvider metric.MeterProvider
}

func defaultOptions() *options {
	return &options{
		connector:     EtcdConnector(),
		logger:        xlog.Default(),
		parallelism:   runtime.GOMAXPROCS(0),
		retryer:       xretry.NewRetryer(),
		group:         DefaultOptions(),
		meterProvider: otel.GetMeterProvider(),
	}
}

// DefaultOptions 返回默认传输选项组：监听 socket 复用地址，连接关闭 Nagle 并开启 keep-alive。
func DefaultOptions() xoption.Group {
	g := xoption.NewGroup()
	_ = xoption.SetValue(g.Parent, xoption.SOReuseAddr, true)
	_ = xoption.SetValue(g.Child, xoption.TCPNoDelay, true)
	_ = xoption.SetValue(g.Child, xoption.KeepAlive, true)
	return g
}

// Option 配置 Acceptor。
type Option func(*options)

// WithConnector 设置目录连接方式，nil 被忽略。默认 EtcdConnector()。
func WithConnector(c Connector) Option {
	return func(o *options) {
		if c != nil {
			o.connector = c
		}
	}
}

// WithHandler 设置连接处理器，nil 被忽略。默认直接关闭连接。
func WithHandler(h ConnHandler) Option {
	return func(o *options) {
		if h != nil {
			o.handler = h
		}
	}
}

// WithLogger 设置日志记录器，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExecutorFactory 设置执行器工厂，nil 被忽略。
// 默认使用以 Acceptor 端口命名的 DispatcherFactory。
func WithExecutorFactory(f xexecutor.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithParallelism 设置执行器并行度，非正值被忽略。默认 GOMAXPROCS。
func WithParallelism(p int) Option {
	return func(o *options) {
		if p > 0 {
			o.parallelism = p
		}
	}
}

// WithAdvertiseHost 设置发布到目录的主机地址。默认探测本机首个非回环 IPv4。
func WithAdvertiseHost(host string) Option {
	return func(o *options) {
		o.advertiseHost = host
	}
}

// WithListenHost 设置绑定地址，默认监听全部地址。
func WithListenHost(host string) Option {
	return func(o *options) {
		o.listenHost = host
	}
}

// WithRetryer 设置目录连接的重试执行器，nil 被忽略。
func WithRetryer(r xretry.Executor) Option {
	return func(o *options) {
		if r != nil {
			o.retryer = r
		}
	}
}

// WithOptions 设置传输选项组。Parent 或 Child 为 nil 时沿用默认值。
func WithOptions(g xoption.Group) Option {
	return func(o *options) {
		if g.Parent != nil {
			o.group.Parent = g.Parent
		}
		if g.Child != nil {
			o.group.Child = g.Child
		}
	}
}

// WithRegistry 使用已有的服务注册表，nil 被忽略。
func WithRegistry(r *ServiceRegistry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithMeterProvider 设置指标提供者，nil 被忽略。
func WithMeterProvider(p metric.MeterProvider) Option {
	return func(o *options) {
		if p != nil {
			o.meterProvider = p
		}
	}
}
