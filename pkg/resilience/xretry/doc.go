// Package xretry 基于 avast/retry-go/v5 为可失败的网络步骤提供重试。
//
// xrpc 中唯一预期会失败、需要重试的启动步骤是连接目录服务器，
// xacceptor 通过 [Executor] 接口使用本包，测试中可替换为立即失败的实现。
//
// # 组成
//
//   - [RetryPolicy]：决定最多尝试几次、某个错误是否值得重试
//   - [BackoffPolicy]：决定两次尝试之间等待多久
//   - [Retryer]：组合二者，转换为 retry-go 选项执行
//
// 用 [Permanent] 包装的错误立即终止重试；context 取消同样立即终止。
//
//	r := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(5)),
//	    xretry.WithBackoffPolicy(xretry.NewExponentialBackoff()),
//	)
//	err := r.Do(ctx, func(ctx context.Context) error { return dial(ctx) })
package xretry
