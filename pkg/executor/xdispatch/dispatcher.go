package xdispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task 是提交给分发器的一个延迟执行单元。
type Task func()

// Dispatcher 是有界 MPMC 任务分发器。
//
// 零值不可用，使用 [New] 创建。所有方法并发安全。
type Dispatcher struct {
	name     string
	logger   *slog.Logger
	strategy WaitStrategyType
	workers  int

	ring     *ring
	notEmpty waiter // worker 在此等待任务
	notFull  waiter // 生产者在此等待空位
	metrics  *instruments

	closed    atomic.Bool
	producers atomic.Int64 // 正在提交中的生产者数
	closeOnce sync.Once
	wg        sync.WaitGroup
	done      chan struct{}
}

// New 创建并启动分发器。
//
// capacity 向上取整为 2 的幂。参数在启动任何 goroutine 前校验，
// 失败时返回包装 [ErrInvalidConfig] 的错误且不残留任何 worker。
func New(workers, capacity int, opts ...Option) (*Dispatcher, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	metrics, err := newInstruments(o.meterProvider, o.name, o.strategy)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		name:     o.name,
		logger:   o.logger,
		strategy: o.strategy,
		workers:  workers,
		ring:     newRing(capacity),
		notEmpty: newWaiter(o.strategy),
		notFull:  newWaiter(o.strategy),
		metrics:  metrics,
		done:     make(chan struct{}),
	}

	d.wg.Add(workers)
	for range workers {
		go d.worker()
	}
	go func() {
		d.wg.Wait()
		close(d.done)
	}()
	return d, nil
}

// Execute 提交任务。
//
// 队列满时按等待策略阻塞或自旋直到有空位，任务不会被丢弃。
// 分发器关闭后返回 [ErrClosed]。
func (d *Dispatcher) Execute(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	d.producers.Add(1)
	defer d.leave()

	for {
		if d.closed.Load() {
			return ErrClosed
		}
		if d.ring.tryPush(task) {
			d.notEmpty.notify()
			d.metrics.addSubmitted()
			return nil
		}
		d.notFull.wait(func() bool {
			return d.closed.Load() || d.ring.writable()
		})
	}
}

// TryExecute 非阻塞提交，队列满时返回 [ErrRingFull]。
func (d *Dispatcher) TryExecute(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	d.producers.Add(1)
	defer d.leave()

	if d.closed.Load() {
		return ErrClosed
	}
	if !d.ring.tryPush(task) {
		return ErrRingFull
	}
	d.notEmpty.notify()
	d.metrics.addSubmitted()
	return nil
}

// leave 在最后一个生产者离开已关闭的分发器时唤醒 worker，让其确认可以退出。
func (d *Dispatcher) leave() {
	if d.producers.Add(-1) == 0 && d.closed.Load() {
		d.notEmpty.notifyAll()
	}
}

// drained 报告关闭后已无生产者在途。
func (d *Dispatcher) drained() bool {
	return d.closed.Load() && d.producers.Load() == 0
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		if task, ok := d.ring.tryPop(); ok {
			d.notFull.notify()
			d.run(task)
			continue
		}
		// 必须先确认无在途生产者，再做最后一次出队，否则可能漏掉刚发布的任务
		if d.drained() {
			if task, ok := d.ring.tryPop(); ok {
				d.run(task)
				continue
			}
			return
		}
		d.notEmpty.wait(func() bool {
			return d.ring.readable() || d.drained()
		})
	}
}

func (d *Dispatcher) run(task Task) {
	defer func() {
		d.metrics.addExecuted()
		if r := recover(); r != nil {
			d.metrics.addPanic()
			d.logger.Error("xdispatch: task panic recovered",
				slog.String("dispatcher", d.name),
				slog.Any("panic", r))
		}
	}()
	task()
}

// Shutdown 停止接收新任务，等待已入队任务执行完毕且 worker 全部退出。
//
// ctx 到期时返回 ctx 的错误，worker 仍会在后台完成排空。Shutdown 可重复调用。
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		d.notFull.notifyAll()
		d.notEmpty.notifyAll()
	})
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 等价于 Shutdown(context.Background())。
func (d *Dispatcher) Close() error {
	return d.Shutdown(context.Background())
}

// Done 返回在全部 worker 退出后关闭的 channel。
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Workers 返回 worker 数量。
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Capacity 返回取整后的队列容量。
func (d *Dispatcher) Capacity() int {
	return d.ring.capacity()
}

// Len 返回近似的排队任务数。
func (d *Dispatcher) Len() int {
	return d.ring.len()
}

// WaitStrategy 返回生效的等待策略。
func (d *Dispatcher) WaitStrategy() WaitStrategyType {
	return d.strategy
}

// Name 返回分发器名称。
func (d *Dispatcher) Name() string {
	return d.name
}
