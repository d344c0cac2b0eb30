// Package xexecutor 按进程级调优参数构造任务执行器。
//
// 进程级参数（[Settings]）包括队列容量、最大 worker 数与等待策略名，
// 可从 xconf 的 executor 节加载，并在配置热重载时更新。
// 已创建的执行器不受后续更新影响。
//
//	f := xexecutor.NewDispatcherFactory(xexecutor.WithName("acceptor-18090"))
//	exec, err := f.NewExecutor(runtime.NumCPU())
//
// worker 数为 min(parallelism, MaxWorkers)。等待策略名按 xdispatch 目录精确匹配，
// 未设置或无法识别时使用 LITE_BLOCKING_WAIT；无法识别时记录一条警告，不返回错误。
package xexecutor
