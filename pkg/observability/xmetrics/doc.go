// Package xmetrics 提供统一的观测接口，把一次操作同时记录为 trace span 与指标。
//
//	ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
//	    Component: "xacceptor",
//	    Operation: "bootstrap",
//	})
//	err := doBootstrap(ctx)
//	span.End(xmetrics.Result{Err: err})
//
// [NewOTelObserver] 基于 OpenTelemetry 实现，记录 xrpc.operation.total 计数与
// xrpc.operation.duration 直方图（秒），标签为 component/operation/status。
// 未配置时使用 [NoopObserver]。
package xmetrics
