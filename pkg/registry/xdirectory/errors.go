package xdirectory

import "errors"

var (
	// ErrNilConfig 配置为空。
	ErrNilConfig = errors.New("xdirectory: config is nil")

	// ErrNoEndpoints 未配置目录服务器地址。
	ErrNoEndpoints = errors.New("xdirectory: no endpoints configured")

	// ErrInvalidEndpoint 地址不是 host:port 格式。
	ErrInvalidEndpoint = errors.New("xdirectory: invalid endpoint, expected host:port")

	// ErrClientClosed 客户端已关闭。
	ErrClientClosed = errors.New("xdirectory: client is closed")

	// ErrInvalidRecord 发布记录缺少必要字段。
	ErrInvalidRecord = errors.New("xdirectory: invalid record")

	// ErrNotPublished 撤销的记录未由本客户端发布。
	ErrNotPublished = errors.New("xdirectory: record not published")

	// ErrNilContext context 参数为 nil。
	ErrNilContext = errors.New("xdirectory: nil context")
)
