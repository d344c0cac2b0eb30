package xtracing

import (
	"context"
	"sync/atomic"
)

// Recorder 记录调用边界事件。实现不得返回错误或向调用方抛出 panic。
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// RecorderFunc 把函数适配为 Recorder。
type RecorderFunc func(ctx context.Context, ev Event)

// Record 实现 Recorder。
func (f RecorderFunc) Record(ctx context.Context, ev Event) { f(ctx, ev) }

// Nop 丢弃所有事件。
type Nop struct{}

// Record 实现 Recorder。
func (Nop) Record(context.Context, Event) {}

// Multi 依次把事件交给每个 Recorder，单个 Recorder 的 panic 不影响其余。
func Multi(recorders ...Recorder) Recorder {
	rs := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return multiRecorder(rs)
}

type multiRecorder []Recorder

func (m multiRecorder) Record(ctx context.Context, ev Event) {
	for _, r := range m {
		safeRecord(ctx, r, ev)
	}
}

func safeRecord(ctx context.Context, r Recorder, ev Event) {
	defer func() { _ = recover() }()
	r.Record(ctx, ev)
}

type recorderHolder struct{ Recorder }

var defaultRecorder atomic.Pointer[recorderHolder]

// Default 返回进程级 Recorder，未设置时为写入 xlog.Default() 的 LogRecorder。
func Default() Recorder {
	if h := defaultRecorder.Load(); h != nil {
		return h.Recorder
	}
	return NewLogRecorder()
}

// SetDefault 替换进程级 Recorder，nil 恢复默认。
func SetDefault(r Recorder) {
	if r == nil {
		defaultRecorder.Store(nil)
		return
	}
	defaultRecorder.Store(&recorderHolder{r})
}

// Record 用进程级 Recorder 记录事件，并吞掉其 panic。
func Record(ctx context.Context, ev Event) {
	safeRecord(ctx, Default(), ev)
}
