// Package xconf 基于 koanf 加载 xrpc 进程配置，支持 YAML/JSON 与文件热重载。
//
// # 职责
//
// xconf 只负责加载、反序列化与重载，不做字段校验和默认值注入；
// 各组件在自己的 Settings 类型上处理默认值（例如 xexecutor.Settings）。
//
//	cfg, err := xconf.Load(path) // path 为空时得到空配置
//	var s xexecutor.Settings
//	err = cfg.Unmarshal("executor", &s)
//
// # 典型布局
//
//	executor:
//	  queue_capacity: 32768
//	  max_workers: 512
//	  wait_strategy: LITE_BLOCKING_WAIT
//	transport:
//	  parent:
//	    SO_BACKLOG: 1024
//	  child:
//	    TCP_NODELAY: true
//
// 选项表按原始键名读取（[Config.Map]），交给 xoption.Set.Apply 做类型转换。
//
// # 并发安全
//
// Reload 构建新的 koanf 实例后整体替换，读取方始终看到完整快照。
// Client 返回的指针在 Reload 后仍可用但指向旧快照，需要时重新获取。
//
// # 热重载
//
// [Watch] 基于 fsnotify 监视配置文件所在目录，内置防抖，兼容编辑器
// "写临时文件再 rename" 的保存方式。Stop 返回后不再触发回调。
package xconf
