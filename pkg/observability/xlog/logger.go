package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// 编译时接口检查
var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

// xlogger Logger 接口的实现
type xlogger struct {
	handler  slog.Handler
	levelVar *slog.LevelVar
}

// log 通用日志方法，捕获调用者位置
//
//go:noinline
func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// Callers → log → Debug/Info/... → 业务代码
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	// 日志子系统失败不扩散到业务调用链
	_ = l.handler.Handle(ctx, r) //nolint:errcheck
}

// Debug 记录 Debug 级别日志
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info 记录 Info 级别日志
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn 记录 Warn 级别日志
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error 记录 Error 级别日志
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

// With 返回带额外属性的派生 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{
		handler:  l.handler.WithAttrs(attrs),
		levelVar: l.levelVar,
	}
}

// SetLevel 动态设置日志级别
func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

// GetLevel 获取当前日志级别
func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

// Enabled 检查指定级别是否启用
func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}

// Slog 返回共享同一 handler 的 *slog.Logger。
//
// 供只接受 *slog.Logger 的底层包（如 xdispatch）使用。
// l 不是由 Builder 构建时返回 slog.Default()。
func Slog(l Logger) *slog.Logger {
	if xl, ok := l.(*xlogger); ok {
		return slog.New(xl.handler)
	}
	return slog.Default()
}
