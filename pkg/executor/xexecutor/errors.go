package xexecutor

import (
	"fmt"

	"github.com/omeyang/xrpc/pkg/executor/xdispatch"
)

var (
	// ErrInvalidParallelism 表示并行度非正，同时满足 errors.Is(err, xdispatch.ErrInvalidConfig)。
	ErrInvalidParallelism = fmt.Errorf("%w: parallelism must be positive", xdispatch.ErrInvalidConfig)

	// ErrInvalidSettings 表示 Settings 数值非法。
	ErrInvalidSettings = fmt.Errorf("%w: invalid executor settings", xdispatch.ErrInvalidConfig)
)
