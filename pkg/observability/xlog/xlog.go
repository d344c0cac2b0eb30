// xlog.go 定义核心接口：Logger、Leveler、LoggerWithLevel
package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口
//
// 所有方法都需要 context.Context 参数，方法签名只接受 slog.Attr。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带额外属性的派生 Logger，派生 logger 共享父级的级别
	With(attrs ...slog.Attr) Logger
}

// Leveler 级别控制接口
//
// 与 Logger 分离，通过类型断言检查具体实现是否支持动态级别控制。
type Leveler interface {
	// SetLevel 动态设置日志级别，运行时生效
	SetLevel(level Level)

	// GetLevel 获取当前日志级别
	GetLevel() Level

	// Enabled 检查指定级别是否启用
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel 组合接口：Logger + Leveler，Build() 返回此接口
type LoggerWithLevel interface {
	Logger
	Leveler
}

// IsEnabled 判断 l 在 level 上是否启用。
//
// l 未实现 Leveler 时视为启用，保证自定义 Logger 不会被静默丢弃。
func IsEnabled(ctx context.Context, l Logger, level Level) bool {
	if l == nil {
		return false
	}
	if lv, ok := l.(Leveler); ok {
		return lv.Enabled(ctx, level)
	}
	return true
}
