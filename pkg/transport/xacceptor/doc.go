// Package xacceptor 实现监听器（Acceptor）的启动与关闭流程。
//
// # 启动顺序
//
// 每个 Acceptor 独占一个端口，启动严格按以下顺序进行：
//
//  1. 在 [ServiceRegistry] 中注册服务提供者，得到 [ServiceWrapper]
//  2. [Acceptor.ConnectToRegistryServer] 连接目录服务器（可被 ctx 中断，带重试）
//  3. [Acceptor.Publish] 发布服务记录
//  4. [Acceptor.Start] 绑定端口并开始接受连接
//
// 以端口 0 创建时实际端口在 Start 后才确定，须先 Start 再 Publish。
//
// 多个 Acceptor 的并发启动与屏障同步由 xrun.StartAll 负责。
//
// # 连接与请求
//
// 每个连接在自己的 goroutine 上运行 [ConnHandler]，读写阻塞不占用执行器；
// 处理器解码出的请求经 [Submitter] 提交，由自有执行器的 worker 处理。
//
// # 关闭
//
// [Acceptor.Shutdown] 是启动的镜像：停止接受并释放端口、撤销已发布的记录、
// 关闭目录连接、取消连接 goroutine、关闭自有执行器。重复调用是安全的。
//
// # 传输选项
//
// 选项取自 [xoption.Group]：Parent 作用于监听 socket（SO_REUSEADDR、缓冲区、
// IP_TOS），Child 作用于每个已接受的 TCP 连接（TCP_NODELAY、KEEP_ALIVE、
// SO_LINGER、缓冲区）。
package xacceptor
