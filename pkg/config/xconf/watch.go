package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 在每次重载尝试后调用，err 非 nil 表示重载失败（旧配置仍生效）。
type WatchCallback func(cfg Config, err error)

// WatchOption 定义监视器选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 设置防抖时间，默认 100ms。非正值被忽略。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watcher 监视配置文件并在变更时重载。
type Watcher struct {
	cfg      *koanfConfig
	fs       *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	wg      sync.WaitGroup
}

// Watch 为文件配置创建监视器，调用 Start 后开始工作。
//
// 监视的是文件所在目录而非文件本身：编辑器保存时可能先删除再创建文件，
// 直接监视文件会丢失后续事件。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok || kc.path == "" {
		return nil, ErrNotReloadable
	}

	o := &watchOptions{debounce: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(o)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(kc.path)
	if err := fs.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch %s: %w", dir, err), fs.Close())
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		cfg:      kc,
		fs:       fs,
		callback: callback,
		debounce: o.debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start 在后台启动监视循环，重复调用无效果。
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.ctx.Err() != nil {
		return
	}
	w.running = true
	w.wg.Add(1)
	go w.loop()
}

// Stop 停止监视并释放 fsnotify 资源。返回后不再触发回调。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.ctx.Err() != nil {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	w.stopTimer()
	w.running = false
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	name := filepath.Base(w.cfg.path)
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == name && isUpdate(ev) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.notify(fmt.Errorf("xconf: watch error: %w", err))
		}
	}
}

// schedule 在防抖窗口结束后重载一次。
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	w.stopTimer()
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		if w.ctx.Err() != nil {
			return
		}
		w.notify(w.cfg.Reload())
	})
}

// stopTimer 调用方需持有 w.mu。成功取消的定时回调不会再运行，需要补上 Done。
func (w *Watcher) stopTimer() {
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.timer = nil
}

func (w *Watcher) notify(err error) {
	if w.callback != nil && w.ctx.Err() == nil {
		w.callback(w.cfg, err)
	}
}

// isUpdate 识别可能代表内容更新的事件：直接写入、重新创建、原子 rename。
func isUpdate(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
