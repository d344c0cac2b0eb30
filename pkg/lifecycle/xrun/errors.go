package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 表示因收到系统信号而终止，用 errors.Is 判断。
	ErrSignal = errors.New("received signal")

	// ErrNilFunc 表示服务或 Bootstrap 函数为 nil。
	ErrNilFunc = errors.New("xrun: nil function")

	// ErrNilService 表示传入了 nil Service。
	ErrNilService = errors.New("xrun: nil service")

	// ErrBootstrapPanic 表示 Bootstrap 发生 panic，已被恢复。
	ErrBootstrapPanic = errors.New("xrun: bootstrap panicked")
)

// SignalError 包含触发终止的信号：
//
//	var sigErr *xrun.SignalError
//	if errors.As(err, &sigErr) {
//	    fmt.Println(sigErr.Signal)
//	}
type SignalError struct {
	Signal os.Signal
}

// Error 实现 error 接口。
func (e *SignalError) Error() string {
	if e.Signal == nil {
		return "received signal <nil>"
	}
	return fmt.Sprintf("received signal %s", e.Signal)
}

// Is 支持 errors.Is(err, ErrSignal)。
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}

// Unwrap 返回 ErrSignal。
func (e *SignalError) Unwrap() error {
	return ErrSignal
}
