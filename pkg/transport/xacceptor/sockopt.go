package xacceptor

import (
	"errors"
	"fmt"
	"net"

	"github.com/omeyang/xrpc/pkg/transport/xoption"
)

// applyChildOptions 把 Child 选项应用到已接受的 TCP 连接，非 TCP 连接原样返回。
func applyChildOptions(conn net.Conn, set *xoption.Set) error {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	var errs []error
	if v, ok := xoption.Value(set, xoption.TCPNoDelay); ok {
		errs = append(errs, wrapSockopt(xoption.TCPNoDelay.Name(), tcp.SetNoDelay(v)))
	}
	if v, ok := xoption.Value(set, xoption.KeepAlive); ok {
		errs = append(errs, wrapSockopt(xoption.KeepAlive.Name(), tcp.SetKeepAlive(v)))
	}
	if v, ok := xoption.Value(set, xoption.SOLinger); ok {
		errs = append(errs, wrapSockopt(xoption.SOLinger.Name(), tcp.SetLinger(v)))
	}
	if v, ok := xoption.Value(set, xoption.SORcvBuf); ok && v > 0 {
		errs = append(errs, wrapSockopt(xoption.SORcvBuf.Name(), tcp.SetReadBuffer(v)))
	}
	if v, ok := xoption.Value(set, xoption.SOSndBuf); ok && v > 0 {
		errs = append(errs, wrapSockopt(xoption.SOSndBuf.Name(), tcp.SetWriteBuffer(v)))
	}
	return errors.Join(errs...)
}

func wrapSockopt(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("set %s: %w", name, err)
}
