// Package xoption 提供进程级、带类型的传输选项注册表。
//
// # 概述
//
// [Option] 是一个不可变的命名标识（数字 id + 名称），类型参数 T 描述该选项
// 值的类型。同一个 [Pool] 内每个名称只对应一个 Option 实例，选项一经创建便
// 在进程生命周期内存在，不可更新或删除。
//
//	noDelay := xoption.MustValueOf[bool]("TCP_NODELAY")
//	same, _ := xoption.ValueOf[bool]("TCP_NODELAY") // same == noDelay
//
// # 创建语义
//
//   - [ValueOf]/[Get]：存在则返回，不存在则原子地创建并注册（first-writer-wins）
//   - [NewInstance]/[Create]：独占创建，名称已存在时返回 [ErrConflict]，池不变
//   - [Exists]：只读查询，无副作用
//
// 并发创建同一未知名称时，所有调用方拿到同一实例，且至多一个调用方观察到
// "由我创建"。
//
// # 类型检查
//
// 名称首次注册时记录值类型；之后以不同 T 获取同名选项返回 [ErrTypeMismatch]。
//
// # 选项集合
//
// [Set] 保存某个组件（如 Acceptor）实际使用的选项值，[Group] 区分监听 socket
// （Parent）与已接受连接（Child）两组配置。Set.Apply 支持按选项名从配置文件
// 批量设置值。
package xoption
