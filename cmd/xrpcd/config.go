package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xrpc/pkg/config/xconf"
	"github.com/omeyang/xrpc/pkg/executor/xexecutor"
	"github.com/omeyang/xrpc/pkg/registry/xdirectory"
	"github.com/omeyang/xrpc/pkg/transport/xacceptor"
	"github.com/omeyang/xrpc/pkg/transport/xoption"
)

// errUsage 标记参数错误，run() 据此返回退出码 2。
var errUsage = errors.New("invalid argument")

// 配置文件中的节。
const (
	directorySection = "directory"
	parentSection    = "transport.parent"
	childSection     = "transport.child"
)

// serverConfig 是命令行参数与配置文件合并后的结果。
type serverConfig struct {
	configPath      string
	registry        string
	ports           []int
	logLevel        string
	waitStrategy    string
	shutdownTimeout time.Duration

	// directory 是连接目录服务的基础配置，Endpoints 在连接时按 registry 覆盖。
	directory *xdirectory.Config
	// options 是每个 Acceptor 使用的传输选项组。
	options xoption.Group
	// conf 为 nil 表示未指定配置文件。
	conf xconf.Config
}

// newServerConfig 从命令行读取参数，不访问文件系统。
func newServerConfig(cmd *cli.Command) (*serverConfig, error) {
	ports, err := parsePorts(cmd.StringSlice("port"))
	if err != nil {
		return nil, err
	}
	if cmd.String("registry") == "" {
		return nil, fmt.Errorf("%w: empty registry address", errUsage)
	}
	return &serverConfig{
		configPath:      cmd.String("config"),
		registry:        cmd.String("registry"),
		ports:           ports,
		logLevel:        cmd.String("log-level"),
		waitStrategy:    cmd.String("wait-strategy"),
		shutdownTimeout: cmd.Duration("shutdown-timeout"),
		directory:       xdirectory.DefaultConfig(),
		options:         xacceptor.DefaultOptions(),
	}, nil
}

// parsePorts 解析端口列表，拒绝越界值与重复端口。
func parsePorts(raw []string) ([]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no port given", errUsage)
	}
	seen := make(map[int]struct{}, len(raw))
	ports := make([]int, 0, len(raw))
	for _, s := range raw {
		p, err := strconv.Atoi(s)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("%w: port %q", errUsage, s)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: duplicate port %d", errUsage, p)
		}
		seen[p] = struct{}{}
		ports = append(ports, p)
	}
	return ports, nil
}

// load 读取配置文件（如有），更新执行器参数并合并目录与传输选项。
// 命令行的 --wait-strategy 优先于文件中的 executor.wait_strategy。
func (c *serverConfig) load() error {
	if c.configPath != "" {
		conf, err := xconf.Load(c.configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", c.configPath, err)
		}
		c.conf = conf
		if err := xexecutor.ApplyConfig(conf); err != nil {
			return err
		}
		if conf.Exists(directorySection) {
			if err := conf.Unmarshal(directorySection, c.directory); err != nil {
				return fmt.Errorf("decode %s: %w", directorySection, err)
			}
		}
		if err := c.options.Parent.Apply(conf.Map(parentSection)); err != nil {
			return fmt.Errorf("decode %s: %w", parentSection, err)
		}
		if err := c.options.Child.Apply(conf.Map(childSection)); err != nil {
			return fmt.Errorf("decode %s: %w", childSection, err)
		}
	}

	if c.waitStrategy != "" {
		s := xexecutor.CurrentSettings()
		s.WaitStrategy = c.waitStrategy
		if err := xexecutor.SetSettings(s); err != nil {
			return err
		}
	}
	return nil
}
