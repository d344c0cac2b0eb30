package xdirectory

import (
	"crypto/tls"
	"time"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/resilience/xretry"
)

type options struct {
	logger        xlog.Logger
	tlsConfig     *tls.Config
	revokeTimeout time.Duration
	retryer       xretry.Executor
}

func defaultOptions() *options {
	return &options{
		logger:        xlog.Default(),
		revokeTimeout: 3 * time.Second,
		retryer:       xretry.NewRetryer(),
	}
}

// Option 配置目录客户端。
type Option func(*options)

// WithLogger 设置日志记录器，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTLS 设置连接 etcd 使用的 TLS 配置。
func WithTLS(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithRevokeTimeout 设置 Close 时撤销租约的超时，非正值被忽略。
func WithRevokeTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.revokeTimeout = d
		}
	}
}

// WithRepublishRetryer 设置租约丢失后重新发布的重试执行器，nil 被忽略。
// 默认 3 次指数退避。
func WithRepublishRetryer(r xretry.Executor) Option {
	return func(o *options) {
		if r != nil {
			o.retryer = r
		}
	}
}
