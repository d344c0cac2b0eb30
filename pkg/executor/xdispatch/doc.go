// Package xdispatch 提供有界、多生产者多消费者的任务分发器。
//
// # 结构
//
// [Dispatcher] 由三部分组成：
//   - 有界环形队列：每个槽位带序号，生产者通过对入队游标 CAS 认领单个槽位，
//     消费者对出队游标 CAS 认领，全程不持有全局锁
//   - 固定数量的 worker goroutine
//   - 一种等待策略，决定队列空时 worker 如何空转、队列满时生产者如何退避
//
// # 等待策略
//
//   - [BlockingWait]：mutex + cond 阻塞，CPU 占用最低，延迟较高
//   - [LiteBlockingWait]：短暂自旋后阻塞，唤醒方仅在有等待者时加锁（默认）
//   - [YieldingWait]：自旋若干次后 runtime.Gosched
//   - [BusySpinWait]：纯忙等，延迟最低，持续占用 CPU
//
// 队列满时 [Dispatcher.Execute] 按策略等待，绝不丢弃任务；需要非阻塞语义时使用
// [Dispatcher.TryExecute]。
//
// # 顺序与投递
//
// 单个生产者提交的任务按提交顺序被 worker 取出；不同生产者之间无顺序保证。
// 每个任务恰好被一个 worker 执行一次。
//
// # 生命周期
//
// [New] 在启动任何 goroutine 之前完成参数校验，构造失败时不会残留 worker。
// [Dispatcher.Shutdown] 拒绝新任务，排空已入队任务后等待 worker 退出。
package xdispatch
