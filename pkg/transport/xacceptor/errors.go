package xacceptor

import "errors"

var (
	// ErrConnectivity 表示连接目录服务器或发布记录失败，包装底层原因。
	ErrConnectivity = errors.New("xacceptor: directory connectivity failure")

	// ErrNotConnected 表示尚未连接目录服务器。
	ErrNotConnected = errors.New("xacceptor: not connected to directory server")

	// ErrAlreadyConnected 表示重复连接目录服务器。
	ErrAlreadyConnected = errors.New("xacceptor: already connected to directory server")

	// ErrPortUnbound 表示以端口 0 创建的 Acceptor 在 Start 之前发布，实际端口尚未确定。
	ErrPortUnbound = errors.New("xacceptor: port not bound yet")

	// ErrAlreadyStarted 表示重复启动。
	ErrAlreadyStarted = errors.New("xacceptor: already started")

	// ErrClosed 表示 Acceptor 已关闭。
	ErrClosed = errors.New("xacceptor: closed")

	// ErrInvalidPort 表示端口超出 0-65535。
	ErrInvalidPort = errors.New("xacceptor: invalid port")

	// ErrNilContext 表示传入了 nil context。
	ErrNilContext = errors.New("xacceptor: nil context")

	// ErrNilProvider 表示注册了 nil 服务提供者。
	ErrNilProvider = errors.New("xacceptor: nil provider")

	// ErrServiceExists 表示 group/name/version 已注册。
	ErrServiceExists = errors.New("xacceptor: service already registered")

	// ErrInvalidService 表示服务元数据非法（为空或包含 "/"）。
	ErrInvalidService = errors.New("xacceptor: invalid service metadata")

	// ErrServiceNotFound 表示服务未注册。
	ErrServiceNotFound = errors.New("xacceptor: service not found")
)
