package xlog

import (
	"errors"
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认值
const (
	// DefaultMaxSizeMB 默认单个日志文件最大大小（MB）
	DefaultMaxSizeMB = 500

	// DefaultMaxBackups 默认保留的备份文件数量
	DefaultMaxBackups = 7

	// DefaultMaxAgeDays 默认保留备份的天数
	DefaultMaxAgeDays = 30

	// maxSizeMB 单个日志文件大小上限（10 GB）
	maxSizeMB = 10240
)

// ErrEmptyFilename 表示轮转文件名为空。
var ErrEmptyFilename = errors.New("xlog: rotation filename is empty")

// rotateConfig 轮转配置
type rotateConfig struct {
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
	localTime  bool
}

// RotateOption 轮转配置选项
type RotateOption func(*rotateConfig)

// WithMaxSize 设置单个日志文件最大大小（MB），必须在 (0, 10240] 内
func WithMaxSize(mb int) RotateOption {
	return func(c *rotateConfig) { c.maxSizeMB = mb }
}

// WithMaxBackups 设置保留的备份文件数量，0 表示不按数量清理
func WithMaxBackups(n int) RotateOption {
	return func(c *rotateConfig) { c.maxBackups = n }
}

// WithMaxAge 设置保留备份的天数，0 表示不按天数清理
func WithMaxAge(days int) RotateOption {
	return func(c *rotateConfig) { c.maxAgeDays = days }
}

// WithCompress 设置是否 gzip 压缩备份文件
func WithCompress(compress bool) RotateOption {
	return func(c *rotateConfig) { c.compress = compress }
}

// WithLocalTime 备份文件名是否使用本地时间（默认 UTC）
func WithLocalTime(local bool) RotateOption {
	return func(c *rotateConfig) { c.localTime = local }
}

// newRotator 创建 lumberjack 轮转器
func newRotator(filename string, opts ...RotateOption) (*lumberjack.Logger, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	cfg := &rotateConfig{
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: DefaultMaxBackups,
		maxAgeDays: DefaultMaxAgeDays,
		compress:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.maxSizeMB <= 0 || cfg.maxSizeMB > maxSizeMB {
		return nil, fmt.Errorf("xlog: max size must be in (0, %d] MB, got %d", maxSizeMB, cfg.maxSizeMB)
	}
	if cfg.maxBackups < 0 || cfg.maxAgeDays < 0 {
		return nil, fmt.Errorf("xlog: max backups and max age must be non-negative")
	}
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.maxSizeMB,
		MaxBackups: cfg.maxBackups,
		MaxAge:     cfg.maxAgeDays,
		Compress:   cfg.compress,
		LocalTime:  cfg.localTime,
	}, nil
}
