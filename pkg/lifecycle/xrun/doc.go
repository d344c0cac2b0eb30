// Package xrun 管理进程的启动与服务生命周期。
//
// # 启动屏障
//
// [StartAll] 为每个 [Bootstrap] 启动一个 goroutine 并等待全部尝试结束后返回，
// 无论成功与否。单个 Bootstrap 的失败或 panic 只记录在它自己的 [Report] 中并写日志，
// 不会取消、阻塞其他 Bootstrap：
//
//	reports := xrun.StartAll(ctx,
//	    xrun.Bootstrap{Name: "acceptor-18090", Run: boot18090},
//	    xrun.Bootstrap{Name: "acceptor-18091", Run: boot18091},
//	)
//	if err := xrun.Errors(reports); err != nil {
//	    logger.Warn(ctx, "partially started", xlog.Err(err))
//	}
//
// 部分 Bootstrap 失败后继续运行是允许的稳定状态。
//
// # 运行期
//
// [Group] 基于 errgroup：任一服务返回错误或收到终止信号时取消 context，
// 所有服务应监听 ctx.Done() 退出。[Run] 额外注册信号监听，收到信号时返回
// [*SignalError]：
//
//	err := xrun.Run(ctx, xrun.WaitForDone())
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
package xrun
