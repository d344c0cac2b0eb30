package xrun

import (
	"os"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/observability/xmetrics"
)

// Option 配置 Group、Run 与 StartAll。
type Option func(*groupOptions)

type groupOptions struct {
	logger          xlog.Logger
	observer        xmetrics.Observer
	name            string
	signals         []os.Signal
	noSignalHandler bool
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		logger:   xlog.Default(),
		observer: xmetrics.NoopObserver{},
		name:     "xrun",
	}
}

func applyOptions(opts []Option) *groupOptions {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLogger 设置日志记录器，nil 被忽略。默认 xlog.Default()。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置 StartAll 的观测器，每次 Bootstrap 尝试对应一个跨度。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *groupOptions) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithName 设置名称，用于日志。空值被忽略。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 设置 Run 监听的信号。空列表等价于 DefaultSignals()。
func WithSignals(signals []os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 禁用 Run 的信号监听。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
