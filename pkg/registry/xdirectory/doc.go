// Package xdirectory 是基于 etcd 的服务目录客户端。
//
// Listener 启动时连接目录服务器并发布自身提供的服务，关闭时撤销发布。
// 每条发布记录挂在一个租约上并自动续约，进程异常退出后记录随租约过期消失。
// 租约在客户端存活期间丢失时按重试策略重新发布，重试耗尽则撤下该记录并记录错误。
//
// # 键布局
//
//	<prefix>/<group>/<name>/<version>/<host:port>
//
// 值为 JSON 编码的 [Record]。默认 prefix 为 "/xrpc/providers"。
//
// # 用法
//
//	c, err := xdirectory.Connect(ctx, "127.0.0.1:2379")
//	err = c.Publish(ctx, rec)
//	recs, err := c.Discover(ctx, rec.Service)
//	err = c.Close() // 撤销全部租约
//
// [Connect] 在返回前做一次读探测并受 ctx 约束，因此连接失败或被取消都能及时返回。
package xdirectory
