// Package xtracing 定义调用边界上的诊断记录契约。
//
// 调用方在 RPC 调用的消费端（[RoleConsumer]）或提供端（[RoleProvider]）
// 构造 [ConsumerEvent] / [ProviderEvent] 并交给 [Recorder]。Recorder 是尽力而为的
// 副作用：不返回错误、不向调用路径抛出 panic。
//
// 默认的 [LogRecorder] 在 Info 级别关闭时直接返回，不做任何格式化：
//
//	xtracing.Default().Record(ctx, xtracing.ProviderEvent{
//	    Call:         "Echo.Echo",
//	    InvokeID:     id,
//	    CallInfo:     "demo/Echo/1.0.0",
//	    ElapsedNanos: time.Since(start).Nanoseconds(),
//	    Destination:  remote,
//	})
//
// 提供端耗时以纳秒保存，只在渲染文本时截断为毫秒。
package xtracing
