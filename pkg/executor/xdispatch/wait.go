package xdispatch

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WaitStrategyType 标识等待策略。零值为 [LiteBlockingWait]。
type WaitStrategyType int

const (
	// LiteBlockingWait 短暂自旋后阻塞，唤醒方仅在存在等待者时加锁。
	LiteBlockingWait WaitStrategyType = iota
	// BlockingWait 直接阻塞在条件变量上，每次唤醒都加锁。
	BlockingWait
	// YieldingWait 自旋若干次后让出处理器。
	YieldingWait
	// BusySpinWait 忙等。
	BusySpinWait
)

var strategyNames = map[WaitStrategyType]string{
	LiteBlockingWait: "LITE_BLOCKING_WAIT",
	BlockingWait:     "BLOCKING_WAIT",
	YieldingWait:     "YIELDING_WAIT",
	BusySpinWait:     "BUSY_SPIN_WAIT",
}

// String 返回策略的配置名。
func (w WaitStrategyType) String() string {
	if name, ok := strategyNames[w]; ok {
		return name
	}
	return "UNKNOWN_WAIT"
}

// ParseWaitStrategy 按名称精确（区分大小写）匹配策略目录。
// 未匹配时返回 ([LiteBlockingWait], false)。
func ParseWaitStrategy(name string) (WaitStrategyType, bool) {
	for typ, n := range strategyNames {
		if n == name {
			return typ, true
		}
	}
	return LiteBlockingWait, false
}

// WaitStrategies 返回全部策略，按枚举值排序。
func WaitStrategies() []WaitStrategyType {
	return []WaitStrategyType{LiteBlockingWait, BlockingWait, YieldingWait, BusySpinWait}
}

const (
	liteSpinTries  = 64
	yieldSpinTries = 100
)

// waiter 是一侧（生产者或消费者）的等待点。
//
// wait 在 cond 返回 true 之前不返回。改变 cond 结果的一方必须随后调用
// notify（唤醒一个）或 notifyAll（唤醒全部）。
type waiter interface {
	wait(cond func() bool)
	notify()
	notifyAll()
}

func newWaiter(typ WaitStrategyType) waiter {
	switch typ {
	case BlockingWait:
		return newBlockingWaiter()
	case YieldingWait:
		return yieldingWaiter{}
	case BusySpinWait:
		return busySpinWaiter{}
	default:
		return newLiteBlockingWaiter()
	}
}

type blockingWaiter struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func newBlockingWaiter() *blockingWaiter {
	w := &blockingWaiter{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *blockingWaiter) wait(cond func() bool) {
	if cond() {
		return
	}
	w.mu.Lock()
	for !cond() {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

func (w *blockingWaiter) notify() {
	w.mu.Lock()
	w.cond.Signal()
	w.mu.Unlock()
}

func (w *blockingWaiter) notifyAll() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

// liteBlockingWaiter 的正确性依赖 sync/atomic 的顺序一致性：
// 等待方先递增 sleepers 再检查 cond，唤醒方先改变 cond 再读取 sleepers，
// 二者至少有一方能观察到对方的写入。
type liteBlockingWaiter struct {
	mu       sync.Mutex
	cond     *sync.Cond
	sleepers atomic.Int32
}

func newLiteBlockingWaiter() *liteBlockingWaiter {
	w := &liteBlockingWaiter{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *liteBlockingWaiter) wait(cond func() bool) {
	for range liteSpinTries {
		if cond() {
			return
		}
	}
	w.mu.Lock()
	w.sleepers.Add(1)
	for !cond() {
		w.cond.Wait()
	}
	w.sleepers.Add(-1)
	w.mu.Unlock()
}

func (w *liteBlockingWaiter) notify() {
	if w.sleepers.Load() == 0 {
		return
	}
	w.mu.Lock()
	w.cond.Signal()
	w.mu.Unlock()
}

func (w *liteBlockingWaiter) notifyAll() {
	if w.sleepers.Load() == 0 {
		return
	}
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

type yieldingWaiter struct{}

func (yieldingWaiter) wait(cond func() bool) {
	for i := 0; !cond(); i++ {
		if i >= yieldSpinTries {
			runtime.Gosched()
		}
	}
}

func (yieldingWaiter) notify()    {}
func (yieldingWaiter) notifyAll() {}

type busySpinWaiter struct{}

func (busySpinWaiter) wait(cond func() bool) {
	for !cond() {
	}
}

func (busySpinWaiter) notify()    {}
func (busySpinWaiter) notifyAll() {}
