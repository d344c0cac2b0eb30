package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyCount     = "count"
	KeyComponent = "component"
	KeyOperation = "operation"
	KeyAddr      = "addr"
	KeyPort      = "port"
)

// Err 创建错误属性，err 为 nil 时返回空属性（会被 slog 忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建人类可读的耗时属性（如 "1.5s"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 创建计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Addr 创建网络地址属性
func Addr(addr string) slog.Attr {
	return slog.String(KeyAddr, addr)
}

// Port 创建端口属性
func Port(port int) slog.Attr {
	return slog.Int(KeyPort, port)
}
