package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xrpc/pkg/executor/xexecutor"
	"github.com/omeyang/xrpc/pkg/lifecycle/xrun"
	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/observability/xmetrics"
	"github.com/omeyang/xrpc/pkg/registry/xdirectory"
	"github.com/omeyang/xrpc/pkg/resilience/xbreaker"
	"github.com/omeyang/xrpc/pkg/resilience/xretry"
	"github.com/omeyang/xrpc/pkg/rpc/xtracing"
	"github.com/omeyang/xrpc/pkg/transport/xacceptor"
)

const groupName = "xrpcd"

// serveAction 是 xrpcd 的主流程。
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := newServerConfig(cmd)
	if err != nil {
		return err
	}

	logger, cleanup, err := xlog.New().
		SetOutput(os.Stderr).
		SetLevelString(cfg.logLevel).
		Build()
	if err != nil {
		return fmt.Errorf("%w: log level %q: %w", errUsage, cfg.logLevel, err)
	}
	defer func() { _ = cleanup() }()
	xlog.SetDefault(logger)

	if err := cfg.load(); err != nil {
		return err
	}
	if cfg.conf != nil {
		w, err := xexecutor.WatchSettings(cfg.conf, logger)
		if err != nil {
			logger.Warn(ctx, "config watch disabled", xlog.Err(err))
		} else {
			defer func() { _ = w.Stop() }()
		}
	}

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	return srv.serve(ctx)
}

// server 持有每个端口的 Acceptor 及其共享依赖。
type server struct {
	cfg       *serverConfig
	logger    xlog.Logger
	observer  xmetrics.Observer
	recorder  xtracing.Recorder
	ids       *xtracing.InvokeIDGenerator
	connector xacceptor.Connector
	// breaker 由全部 Acceptor 共享：目录不可用时后续连接快速失败。
	breaker *xbreaker.Breaker
}

func newServer(cfg *serverConfig, logger xlog.Logger) (*server, error) {
	observer, err := xmetrics.NewOTelObserver(xmetrics.WithInstrumentationName("github.com/omeyang/xrpc/cmd/xrpcd"))
	if err != nil {
		return nil, err
	}
	ids, err := xtracing.NewInvokeIDGenerator()
	if err != nil {
		return nil, err
	}
	return &server{
		cfg:      cfg,
		logger:   logger,
		observer: observer,
		recorder: xtracing.Multi(
			xtracing.NewLogRecorder(xtracing.WithLogger(logger)),
			xtracing.SpanRecorder{},
		),
		ids:       ids,
		connector: directoryConnector(cfg.directory, logger),
		breaker:   xbreaker.New("registry", xbreaker.WithLogger(logger)),
	}, nil
}

// directoryConnector 以 base 为模板连接目录服务，Endpoints 替换为 addr。
func directoryConnector(base *xdirectory.Config, logger xlog.Logger) xacceptor.Connector {
	return func(ctx context.Context, addr string) (xacceptor.Directory, error) {
		cfg := *base
		cfg.Endpoints = []string{addr}
		c, err := xdirectory.ConnectConfig(ctx, &cfg, xdirectory.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (s *server) options() []xrun.Option {
	return []xrun.Option{
		xrun.WithLogger(s.logger),
		xrun.WithObserver(s.observer),
		xrun.WithName(groupName),
	}
}

// newAcceptors 为每个端口创建 Acceptor。
func (s *server) newAcceptors() ([]*xacceptor.Acceptor, error) {
	acceptors := make([]*xacceptor.Acceptor, 0, len(s.cfg.ports))
	for _, port := range s.cfg.ports {
		a, err := xacceptor.New(port,
			xacceptor.WithLogger(s.logger),
			xacceptor.WithConnector(s.connector),
			xacceptor.WithRetryer(xbreaker.Guard(s.breaker, xretry.NewRetryer())),
			xacceptor.WithOptions(s.cfg.options),
			xacceptor.WithHandler(newEchoHandler(s.ids, s.recorder, s.observer, s.logger)),
		)
		if err != nil {
			return nil, err
		}
		acceptors = append(acceptors, a)
	}
	return acceptors, nil
}

// bootstrap 依次注册 Echo 服务、连接目录、发布并开始监听。
func (s *server) bootstrap(a *xacceptor.Acceptor) xrun.Bootstrap {
	return xrun.Bootstrap{
		Name: "acceptor-" + strconv.Itoa(a.Port()),
		Run: func(ctx context.Context) error {
			if _, err := a.Registry().Provider(&EchoService{}).Name(echoServiceName).Register(); err != nil {
				return err
			}
			if err := a.ConnectToRegistryServer(ctx, s.cfg.registry); err != nil {
				return err
			}
			if err := a.Publish(ctx); err != nil {
				return err
			}
			return a.Start(ctx)
		},
	}
}

// serve 启动全部 Acceptor，运行到收到信号或 ctx 取消，然后逐个关闭。
// 部分 Acceptor 启动失败时其余照常服务，全部失败才返回错误。
func (s *server) serve(ctx context.Context) error {
	acceptors, err := s.newAcceptors()
	if err != nil {
		return err
	}

	boots := make([]xrun.Bootstrap, len(acceptors))
	for i, a := range acceptors {
		boots[i] = s.bootstrap(a)
	}

	// 启动阶段也响应信号，避免在目录重试期间无法退出。
	bootCtx, stop := signal.NotifyContext(ctx, xrun.DefaultSignals()...)
	reports := xrun.StartAllWithOptions(bootCtx, s.options(), boots...)
	stop()

	running := make([]*xacceptor.Acceptor, 0, len(acceptors))
	for i, r := range reports {
		if r.OK() {
			running = append(running, acceptors[i])
			s.logger.Info(ctx, "acceptor serving",
				xlog.Port(acceptors[i].Port()),
				slog.String("id", acceptors[i].ID()),
				xlog.Duration(r.Elapsed))
			continue
		}
		s.shutdown(ctx, acceptors[i])
	}
	bootErr := xrun.Errors(reports)
	if bootErr != nil {
		s.logger.Error(ctx, "bootstrap incomplete", xlog.Err(bootErr), xlog.Count(int64(len(running))))
	}
	if len(running) == 0 {
		return fmt.Errorf("no acceptor started: %w", bootErr)
	}

	services := make([]func(ctx context.Context) error, len(running))
	for i, a := range running {
		services[i] = xrun.ShutdownOnDone(a.Shutdown, s.cfg.shutdownTimeout)
	}
	err = xrun.RunWithOptions(ctx, s.options(), services...)

	var sigErr *xrun.SignalError
	if errors.As(err, &sigErr) {
		s.logger.Info(ctx, "shutdown complete", slog.String("signal", sigErr.Signal.String()))
		return nil
	}
	return err
}

// shutdown 释放启动失败的 Acceptor 已占用的资源。
func (s *server) shutdown(ctx context.Context, a *xacceptor.Acceptor) {
	stopCtx := context.WithoutCancel(ctx)
	if s.cfg.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		stopCtx, cancel = context.WithTimeout(stopCtx, s.cfg.shutdownTimeout)
		defer cancel()
	}
	if err := a.Shutdown(stopCtx); err != nil {
		s.logger.Warn(ctx, "shutdown failed acceptor", xlog.Port(a.Port()), xlog.Err(err))
	}
}
