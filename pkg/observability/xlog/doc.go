// Package xlog 基于 log/slog 的结构化日志库，供 xrpc 各组件统一使用。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 动态级别调整（运行时热更新，派生 logger 共享级别）
//   - 强制 context 传递的日志方法，签名只接受 slog.Attr
//   - 全局 Logger 便利函数（脚手架、cmd 场景）
//
// # 创建 Logger
//
// Builder 遵循 first-error-wins：遇到第一个配置错误后，Build 返回该错误。
//
//	logger, cleanup, err := xlog.New().
//	    SetLevelString("info").
//	    SetFormat("json").
//	    SetRotation("/var/log/xrpcd/xrpcd.log", xlog.WithMaxSize(200)).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
// # 级别门控
//
// [Leveler.Enabled] 用于在构造昂贵日志内容前判断级别是否启用。
// 调用链上的诊断钩子（如 xtracing 的 LogRecorder）依赖它在 Info 关闭时
// 完全跳过格式化。
//
// # 文件轮转
//
// [Builder.SetRotation] 基于 gopkg.in/natefinch/lumberjack.v2，按文件大小轮转。
// Build 返回的 cleanup 负责关闭轮转文件。
package xlog
