// xrpcd 启动一组 RPC 传输端点：每个端口一个 Acceptor，向 etcd 目录发布
// Echo 服务后开始接受连接，收到 SIGINT/SIGTERM 时逐个关闭。
//
// 用法:
//
//	xrpcd [选项]
//
// 选项:
//
//	-c, --config            配置文件路径（yaml/json），可选
//	-r, --registry          目录服务地址 (默认: 127.0.0.1:20001)
//	-p, --port              监听端口，可重复 (默认: 18090, 18091)
//	    --log-level         日志级别 (默认: info)
//	    --wait-strategy     执行器等待策略，如 BLOCKING_WAIT
//	    --shutdown-timeout  单个 Acceptor 的关闭超时 (默认: 10s)
//
// 配置文件:
//
//	executor:
//	  queue_capacity: 32768
//	  max_workers: 512
//	  wait_strategy: LITE_BLOCKING_WAIT
//	directory:
//	  lease_ttl: 10
//	  prefix: /xrpc/providers
//	transport:
//	  parent:
//	    SO_RCVBUF: 65536
//	  child:
//	    TCP_NODELAY: true
//
// executor 节在文件变更后自动重载，只影响之后创建的执行器；重载以文件为准，
// 覆盖 --wait-strategy。
//
// 退出码:
//
//	0: 正常退出（含信号触发的关闭）
//	1: 启动或运行失败
//	2: 参数错误
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	defaultRegistry        = "127.0.0.1:20001"
	defaultShutdownTimeout = 10 * time.Second
)

var defaultPorts = []string{"18090", "18091"}

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xrpcd",
		Usage:   "xrpc 传输端点服务",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:    "registry",
				Aliases: []string{"r"},
				Usage:   "目录服务地址",
				Value:   defaultRegistry,
			},
			&cli.StringSliceFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "监听端口，可重复指定",
				Value:   defaultPorts,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "wait-strategy",
				Usage: "执行器等待策略",
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "单个 Acceptor 的关闭超时",
				Value: defaultShutdownTimeout,
			},
		},
		Action: serveAction,
		// 由 run() 统一映射退出码，禁止 urfave/cli 直接 os.Exit。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	// 信号由 xrun.Run 监听，此处不再注册。
	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
