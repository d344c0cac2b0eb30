package xdispatch

import (
	"math/bits"
	"sync/atomic"
)

// maxCapacity 限制单个 ring 的槽位数，避免容量取整溢出。
const maxCapacity = 1 << 30

type cacheLinePad [64]byte

type slot struct {
	seq  atomic.Uint64
	task Task
}

// ring 是基于槽位序号的有界 MPMC 队列。
//
// 槽位 i 的序号初始为 i。生产者在 seq == pos 时可写入，写入后置 seq = pos+1；
// 消费者在 seq == pos+1 时可读取，读取后置 seq = pos+capacity 交还给下一轮生产者。
// 任一时刻一个槽位只被一个 goroutine 访问。
type ring struct {
	_     cacheLinePad
	enq   atomic.Uint64
	_     cacheLinePad
	deq   atomic.Uint64
	_     cacheLinePad
	mask  uint64
	slots []slot
}

// roundCapacity 将容量向上取整为 2 的幂。
func roundCapacity(capacity int) int {
	if capacity <= 1 {
		return 1
	}
	if capacity >= maxCapacity {
		return maxCapacity
	}
	return 1 << bits.Len(uint(capacity-1))
}

func newRing(capacity int) *ring {
	n := roundCapacity(capacity)
	r := &ring{
		mask:  uint64(n - 1),
		slots: make([]slot, n),
	}
	for i := range r.slots {
		r.slots[i].seq.Store(uint64(i))
	}
	return r
}

func (r *ring) capacity() int {
	return len(r.slots)
}

// tryPush 认领一个槽位写入任务，队列满时返回 false。
func (r *ring) tryPush(t Task) bool {
	pos := r.enq.Load()
	for {
		s := &r.slots[pos&r.mask]
		diff := int64(s.seq.Load() - pos)
		switch {
		case diff == 0:
			if r.enq.CompareAndSwap(pos, pos+1) {
				s.task = t
				s.seq.Store(pos + 1)
				return true
			}
			pos = r.enq.Load()
		case diff < 0:
			return false
		default:
			pos = r.enq.Load()
		}
	}
}

// tryPop 认领一个已发布的槽位取出任务，队列空时返回 false。
func (r *ring) tryPop() (Task, bool) {
	pos := r.deq.Load()
	for {
		s := &r.slots[pos&r.mask]
		diff := int64(s.seq.Load() - (pos + 1))
		switch {
		case diff == 0:
			if r.deq.CompareAndSwap(pos, pos+1) {
				t := s.task
				s.task = nil
				s.seq.Store(pos + r.mask + 1)
				return t, true
			}
			pos = r.deq.Load()
		case diff < 0:
			return nil, false
		default:
			pos = r.deq.Load()
		}
	}
}

// readable 报告队首槽位是否可能可读。游标过期时同样返回 true，由调用方重试 tryPop。
func (r *ring) readable() bool {
	pos := r.deq.Load()
	return int64(r.slots[pos&r.mask].seq.Load()-(pos+1)) >= 0
}

// writable 报告队尾槽位是否可能可写，语义同 readable。
func (r *ring) writable() bool {
	pos := r.enq.Load()
	return int64(r.slots[pos&r.mask].seq.Load()-pos) >= 0
}

// len 返回近似长度。
func (r *ring) len() int {
	enq, deq := r.enq.Load(), r.deq.Load()
	if enq <= deq {
		return 0
	}
	n := int(enq - deq)
	return min(n, r.capacity())
}
