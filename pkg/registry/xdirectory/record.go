package xdirectory

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ServiceMeta 唯一标识一个服务。
type ServiceMeta struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Key 返回 group/name/version 形式的服务键。
func (m ServiceMeta) Key() string {
	return m.Group + "/" + m.Name + "/" + m.Version
}

// String 实现 fmt.Stringer。
func (m ServiceMeta) String() string { return m.Key() }

func (m ServiceMeta) validate() error {
	fields := [...]struct{ name, value string }{
		{"group", m.Group}, {"name", m.Name}, {"version", m.Version},
	}
	for _, f := range fields {
		if f.value == "" || strings.Contains(f.value, "/") {
			return fmt.Errorf("%w: %s %q", ErrInvalidRecord, f.name, f.value)
		}
	}
	return nil
}

// Record 是目录中的一条服务提供者记录。
type Record struct {
	Service    ServiceMeta `json:"service"`
	Host       string      `json:"host"`
	Port       int         `json:"port"`
	InstanceID string      `json:"instanceId,omitempty"`
	Weight     int         `json:"weight,omitempty"`
	ConnCount  int         `json:"connCount,omitempty"`
	Methods    []string    `json:"methods,omitempty"`
}

// Addr 返回 host:port。
func (r Record) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Validate 检查服务标识与地址。
func (r Record) Validate() error {
	if err := r.Service.validate(); err != nil {
		return err
	}
	if r.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidRecord)
	}
	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidRecord, r.Port)
	}
	return nil
}

func servicePrefix(prefix string, meta ServiceMeta) string {
	return prefix + "/" + meta.Key() + "/"
}

func recordKey(prefix string, r Record) string {
	return servicePrefix(prefix, r.Service) + r.Addr()
}
