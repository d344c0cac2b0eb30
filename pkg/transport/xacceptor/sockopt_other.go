//go:build !unix

package xacceptor

import (
	"syscall"

	"github.com/omeyang/xrpc/pkg/transport/xoption"
)

// listenControl 在非 unix 平台上不设置 Parent 选项。
func listenControl(*xoption.Set) func(network, address string, c syscall.RawConn) error {
	return nil
}
