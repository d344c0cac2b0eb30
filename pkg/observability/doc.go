// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持文件轮转
//   - xmetrics: 统一的 span 接口，OpenTelemetry 实现同时产出追踪与指标
//
// RPC 调用事件的格式化与记录在 rpc/xtracing 中，建立在这两个包之上。
package observability
