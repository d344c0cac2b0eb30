package xlog

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// =============================================================================
// 全局 Logger
//
// 定位：cmd 和脚手架场景。库代码通过选项注入 Logger。
// =============================================================================

var (
	globalLogger atomic.Pointer[LoggerWithLevel]
	globalMu     sync.Mutex
)

// Default 返回全局默认 Logger（惰性初始化：stderr、Info 级别、text 格式）
func Default() LoggerWithLevel {
	if l := globalLogger.Load(); l != nil {
		return *l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if l := globalLogger.Load(); l != nil {
		return *l
	}
	logger, _, err := New().Build()
	if err != nil {
		// 默认参数不应失败，失败时降级为最小可用 logger
		levelVar := new(slog.LevelVar)
		logger = &xlogger{handler: slog.NewTextHandler(os.Stderr, nil), levelVar: levelVar}
	}
	globalLogger.Store(&logger)
	return logger
}

// SetDefault 替换全局默认 Logger，nil 被忽略
func SetDefault(l LoggerWithLevel) {
	if l == nil {
		return
	}
	globalLogger.Store(&l)
}

// ResetDefault 重置全局 Logger 为未初始化状态（仅用于测试）
func ResetDefault() {
	globalMu.Lock()
	globalLogger.Store(nil)
	globalMu.Unlock()
}

// Info 使用全局 Logger 记录 Info 级别日志
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().Info(ctx, msg, attrs...)
}

// Warn 使用全局 Logger 记录 Warn 级别日志
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().Warn(ctx, msg, attrs...)
}

// Error 使用全局 Logger 记录 Error 级别日志
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().Error(ctx, msg, attrs...)
}
