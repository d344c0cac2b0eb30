package xdirectory

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Config 目录客户端配置，可由 xconf 按 koanf 标签反序列化。
type Config struct {
	// Endpoints etcd 地址列表，格式 host:port。
	Endpoints []string `koanf:"endpoints" json:"endpoints"`

	Username string `koanf:"username" json:"username"`
	Password string `koanf:"password" json:"password"`

	// DialTimeout 建立连接超时，零值使用 5s。
	DialTimeout time.Duration `koanf:"dial_timeout" json:"dialTimeout"`

	// DialKeepAliveTime gRPC keepalive 探测间隔，零值使用 10s。
	DialKeepAliveTime time.Duration `koanf:"dial_keepalive_time" json:"dialKeepAliveTime"`

	// DialKeepAliveTimeout gRPC keepalive 超时，零值使用 3s。
	DialKeepAliveTimeout time.Duration `koanf:"dial_keepalive_timeout" json:"dialKeepAliveTimeout"`

	// PermitWithoutStream 无活跃流时也发送 keepalive。
	PermitWithoutStream bool `koanf:"permit_without_stream" json:"permitWithoutStream"`

	// Prefix 记录键前缀，零值使用 "/xrpc/providers"。
	Prefix string `koanf:"prefix" json:"prefix"`

	// LeaseTTL 发布记录的租约时长（秒），零值使用 10。
	LeaseTTL int64 `koanf:"lease_ttl" json:"leaseTTL"`
}

const (
	defaultDialTimeout          = 5 * time.Second
	defaultDialKeepAliveTime    = 10 * time.Second
	defaultDialKeepAliveTimeout = 3 * time.Second
	defaultPrefix               = "/xrpc/providers"
	defaultLeaseTTL             = 10
)

// DefaultConfig 返回推荐配置，调用方需设置 Endpoints。
func DefaultConfig() *Config {
	return &Config{
		DialTimeout:          defaultDialTimeout,
		DialKeepAliveTime:    defaultDialKeepAliveTime,
		DialKeepAliveTimeout: defaultDialKeepAliveTimeout,
		PermitWithoutStream:  true,
		Prefix:               defaultPrefix,
		LeaseTTL:             defaultLeaseTTL,
	}
}

// Validate 检查必填字段与地址格式。
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return ErrNoEndpoints
	}
	for i, ep := range c.Endpoints {
		if _, port, err := net.SplitHostPort(ep); err != nil || port == "" {
			return fmt.Errorf("%w: endpoint[%d]=%q", ErrInvalidEndpoint, i, ep)
		}
	}
	return nil
}

// withDefaults 返回填充默认值后的副本。
func (c *Config) withDefaults() *Config {
	cfg := *c
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.DialKeepAliveTime <= 0 {
		cfg.DialKeepAliveTime = defaultDialKeepAliveTime
	}
	if cfg.DialKeepAliveTimeout <= 0 {
		cfg.DialKeepAliveTimeout = defaultDialKeepAliveTimeout
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	cfg.Prefix = "/" + strings.Trim(cfg.Prefix, "/")
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = defaultLeaseTTL
	}
	return &cfg
}
