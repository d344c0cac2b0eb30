package xmetrics

import (
	"context"
	"strconv"
	"time"
)

// Kind 表示观测跨度类型。
type Kind int

const (
	// KindInternal 进程内操作。
	KindInternal Kind = iota
	// KindServer 服务端处理。
	KindServer
	// KindClient 客户端调用。
	KindClient
)

// String 返回可读名称。
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "Internal"
	case KindServer:
		return "Server"
	case KindClient:
		return "Client"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Status 表示观测结果状态。
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Attr 是一个观测属性。
type Attr struct {
	Key   string
	Value any
}

// String 创建字符串属性。
func String(key, value string) Attr { return Attr{Key: key, Value: value} }

// Int 创建整数属性。
func Int(key string, value int) Attr { return Attr{Key: key, Value: value} }

// Bool 创建布尔属性。
func Bool(key string, value bool) Attr { return Attr{Key: key, Value: value} }

// Duration 创建时长属性，以纳秒记录。
func Duration(key string, value time.Duration) Attr { return Attr{Key: key, Value: value} }

// SpanOptions 定义跨度创建参数。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 描述跨度结束时的结果。Status 为空时按 Err 推导。
type Result struct {
	Status Status
	Err    error
	Attrs  []Attr
}

// Span 是一次观测。
type Span interface {
	// End 结束观测，重复调用只生效一次。
	End(result Result)
}

// Observer 创建观测跨度。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 不做任何记录。
type NoopObserver struct{}

// Start 实现 Observer。
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 是空跨度。
type NoopSpan struct{}

// End 实现 Span。
func (NoopSpan) End(Result) {}

// Start 用 observer 开始观测，保证返回非 nil 的 context 与 Span。
// observer 为 nil 或返回 nil 值时回退为空实现。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}

func resolveStatus(r Result) Status {
	if r.Status != "" {
		return r.Status
	}
	if r.Err != nil {
		return StatusError
	}
	return StatusOK
}
