package xtracing

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sony/sonyflake/v2"
)

// EnvMachineID 显式指定调用 id 生成器的机器号（0-65535）。
const EnvMachineID = "XRPC_MACHINE_ID"

var (
	// ErrInvalidMachineID 表示 XRPC_MACHINE_ID 无法解析。
	ErrInvalidMachineID = errors.New("xtracing: invalid machine id")

	// ErrNilGenerator 表示生成器未通过 NewInvokeIDGenerator 创建。
	ErrNilGenerator = errors.New("xtracing: nil invoke id generator")
)

// InvokeIDGenerator 基于 sonyflake 生成进程间唯一的调用 id，并发安全。
type InvokeIDGenerator struct {
	sf *sonyflake.Sonyflake
}

type idOptions struct {
	machineID func() (int, error)
	startTime time.Time
}

// IDOption 配置 InvokeIDGenerator。
type IDOption func(*idOptions)

// WithMachineID 固定机器号。
func WithMachineID(id uint16) IDOption {
	return func(o *idOptions) {
		o.machineID = func() (int, error) { return int(id), nil }
	}
}

// WithStartTime 设置 sonyflake 纪元，零值使用库默认值。
func WithStartTime(t time.Time) IDOption {
	return func(o *idOptions) {
		o.startTime = t
	}
}

// NewInvokeIDGenerator 创建生成器。
//
// 未指定机器号时依次尝试 XRPC_MACHINE_ID、主机名哈希、私有 IPv4 低 16 位。
func NewInvokeIDGenerator(opts ...IDOption) (*InvokeIDGenerator, error) {
	o := &idOptions{machineID: defaultMachineID}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: o.startTime,
		MachineID: o.machineID,
	})
	if err != nil {
		return nil, fmt.Errorf("xtracing: create invoke id generator: %w", err)
	}
	return &InvokeIDGenerator{sf: sf}, nil
}

// Next 返回下一个 id 的十进制文本。
func (g *InvokeIDGenerator) Next() (string, error) {
	if g == nil || g.sf == nil {
		return "", ErrNilGenerator
	}
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("xtracing: next invoke id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func defaultMachineID() (int, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		id, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q: %w", ErrInvalidMachineID, EnvMachineID, s, err)
		}
		return int(id), nil
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return int(hashToMachineID(host)), nil
	}
	ip, err := privateIPv4()
	if err != nil {
		return 0, err
	}
	b := ip.As4()
	return int(b[2])<<8 | int(b[3]), nil
}

// hashToMachineID 把主机名的 xxhash 摘要折叠为 16 位。
func hashToMachineID(s string) uint16 {
	sum := xxhash.Sum64String(s)
	return uint16(sum>>48) ^ uint16(sum>>32) ^ uint16(sum>>16) ^ uint16(sum)
}

func privateIPv4() (netip.Addr, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return netip.Addr{}, err
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip, ok := netip.AddrFromSlice(ipNet.IP)
		if !ok {
			continue
		}
		ip = ip.Unmap()
		if ip.Is4() && !ip.IsLoopback() && (ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
			return ip, nil
		}
	}
	return netip.Addr{}, errors.New("xtracing: no private IPv4 address")
}
