package xdispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig 表示构造参数无效，是所有配置类错误的根。
	ErrInvalidConfig = errors.New("xdispatch: invalid config")

	// ErrInvalidCapacity 表示队列容量非正。
	ErrInvalidCapacity = fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)

	// ErrInvalidWorkers 表示 worker 数量非正。
	ErrInvalidWorkers = fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)

	// ErrClosed 表示分发器已关闭。
	ErrClosed = errors.New("xdispatch: dispatcher closed")

	// ErrNilTask 表示提交了 nil 任务。
	ErrNilTask = errors.New("xdispatch: nil task")

	// ErrRingFull 表示非阻塞提交时队列已满。
	ErrRingFull = errors.New("xdispatch: ring full")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xdispatch: nil context")
)
