//go:build unix

package xacceptor

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/omeyang/xrpc/pkg/transport/xoption"
)

type sockopt struct {
	name  string
	level int
	opt   int
	value int
}

// parentSockopts 收集需要在 bind 之前设置到监听 socket 上的选项。
func parentSockopts(set *xoption.Set, network string) []sockopt {
	var opts []sockopt
	if v, ok := xoption.Value(set, xoption.SOReuseAddr); ok {
		opts = append(opts, sockopt{xoption.SOReuseAddr.Name(), unix.SOL_SOCKET, unix.SO_REUSEADDR, boolToInt(v)})
	}
	if v, ok := xoption.Value(set, xoption.SORcvBuf); ok && v > 0 {
		opts = append(opts, sockopt{xoption.SORcvBuf.Name(), unix.SOL_SOCKET, unix.SO_RCVBUF, v})
	}
	if v, ok := xoption.Value(set, xoption.SOSndBuf); ok && v > 0 {
		opts = append(opts, sockopt{xoption.SOSndBuf.Name(), unix.SOL_SOCKET, unix.SO_SNDBUF, v})
	}
	if v, ok := xoption.Value(set, xoption.IPTOS); ok {
		if network == "tcp6" {
			opts = append(opts, sockopt{xoption.IPTOS.Name(), unix.IPPROTO_IPV6, unix.IPV6_TCLASS, v})
		} else {
			opts = append(opts, sockopt{xoption.IPTOS.Name(), unix.IPPROTO_IP, unix.IP_TOS, v})
		}
	}
	return opts
}

// listenControl 返回 net.ListenConfig 的 Control 回调。
func listenControl(set *xoption.Set) func(network, address string, c syscall.RawConn) error {
	return func(network, _ string, c syscall.RawConn) error {
		opts := parentSockopts(set, network)
		if len(opts) == 0 {
			return nil
		}
		var opErr error
		err := c.Control(func(fd uintptr) {
			for _, o := range opts {
				if err := unix.SetsockoptInt(int(fd), o.level, o.opt, o.value); err != nil {
					opErr = wrapSockopt(o.name, err)
					return
				}
			}
		})
		return errors.Join(err, opErr)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
