package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Builder 日志配置构建器
type Builder struct {
	output    io.Writer
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	closer    io.Closer
	attrs     []slog.Attr
	err       error
}

// New 创建配置构建器。默认 stderr、Info 级别、text 格式。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置日志输出目标，nil 被忽略
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json，空值视为 text
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("xlog: unknown format %q", format)
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetAttrs 设置固定属性，附加到每条日志（如 service、instance）
func (b *Builder) SetAttrs(attrs ...slog.Attr) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// SetRotation 设置按大小轮转的日志文件输出
func (b *Builder) SetRotation(filename string, opts ...RotateOption) *Builder {
	if b.err != nil {
		return b
	}
	rotator, err := newRotator(filename, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.output = rotator
	b.closer = rotator
	return b
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，用于关闭轮转文件（幂等）
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}

	var handler slog.Handler
	switch b.format {
	case "json":
		handler = slog.NewJSONHandler(b.output, opts)
	default:
		handler = slog.NewTextHandler(b.output, opts)
	}
	if len(b.attrs) > 0 {
		handler = handler.WithAttrs(b.attrs)
	}

	logger := &xlogger{
		handler:  handler,
		levelVar: b.levelVar,
	}

	var once sync.Once
	closer := b.closer
	cleanup := func() error {
		var err error
		once.Do(func() {
			if closer != nil {
				err = closer.Close()
			}
		})
		return err
	}
	return logger, cleanup, nil
}
