package xexecutor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/omeyang/xrpc/pkg/config/xconf"
	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

// 默认调优参数。
const (
	DefaultQueueCapacity = 32768
	DefaultMaxWorkers    = 512
)

// ConfigPath 是配置文件中执行器参数所在的节。
const ConfigPath = "executor"

// Settings 是进程级执行器调优参数。
type Settings struct {
	// QueueCapacity 队列容量，向上取整为 2 的幂。
	QueueCapacity int `koanf:"queue_capacity"`
	// MaxWorkers 单个执行器的 worker 上限。
	MaxWorkers int `koanf:"max_workers"`
	// WaitStrategy 等待策略名，如 "BLOCKING_WAIT"，空串使用默认策略。
	WaitStrategy string `koanf:"wait_strategy"`
}

// DefaultSettings 返回默认参数。
func DefaultSettings() Settings {
	return Settings{
		QueueCapacity: DefaultQueueCapacity,
		MaxWorkers:    DefaultMaxWorkers,
	}
}

// Validate 检查数值参数。策略名不参与校验，未知名称在构造时回退为默认策略。
func (s Settings) Validate() error {
	if s.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queue_capacity %d", ErrInvalidSettings, s.QueueCapacity)
	}
	if s.MaxWorkers <= 0 {
		return fmt.Errorf("%w: max_workers %d", ErrInvalidSettings, s.MaxWorkers)
	}
	return nil
}

var current atomic.Pointer[Settings]

func init() {
	s := DefaultSettings()
	current.Store(&s)
}

// CurrentSettings 返回当前进程级参数的副本。
func CurrentSettings() Settings {
	return *current.Load()
}

// SetSettings 替换进程级参数。
func SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	current.Store(&s)
	return nil
}

// ResetSettings 恢复默认参数（仅用于测试）。
func ResetSettings() {
	s := DefaultSettings()
	current.Store(&s)
}

// LoadSettings 从 cfg 的 executor 节读取参数，未配置的字段保持默认值。
func LoadSettings(cfg xconf.Config) (Settings, error) {
	s := DefaultSettings()
	if cfg == nil || !cfg.Exists(ConfigPath) {
		return s, nil
	}
	if err := cfg.Unmarshal(ConfigPath, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ApplyConfig 从 cfg 读取参数并设为进程级参数。
func ApplyConfig(cfg xconf.Config) error {
	s, err := LoadSettings(cfg)
	if err != nil {
		return err
	}
	return SetSettings(s)
}

// WatchSettings 监视配置文件，重载成功后更新进程级参数。
// 重载或解析失败时保留原参数并记录日志。返回的 Watcher 已启动。
func WatchSettings(cfg xconf.Config, logger xlog.Logger) (*xconf.Watcher, error) {
	if logger == nil {
		logger = xlog.Default()
	}
	w, err := xconf.Watch(cfg, func(c xconf.Config, err error) {
		ctx := context.Background()
		if err == nil {
			err = ApplyConfig(c)
		}
		if err != nil {
			logger.Warn(ctx, "executor settings not updated", xlog.Err(err))
			return
		}
		s := CurrentSettings()
		logger.Info(ctx, "executor settings updated",
			xlog.Count(int64(s.MaxWorkers)),
			xlog.Component("xexecutor"))
	})
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}
