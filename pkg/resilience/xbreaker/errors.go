package xbreaker

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrOpenState 熔断器打开，请求被拒绝。
	ErrOpenState = gobreaker.ErrOpenState

	// ErrTooManyRequests 半开状态下请求数超限。
	ErrTooManyRequests = gobreaker.ErrTooManyRequests

	ErrNilBreaker = errors.New("xbreaker: nil breaker")
	ErrNilContext = errors.New("xbreaker: nil context")
	ErrNilFunc    = errors.New("xbreaker: nil function")
)

// BreakerError 包装熔断拒绝，Retryable 返回 false。
type BreakerError struct {
	Err   error
	Name  string
	State State
}

func (e *BreakerError) Error() string {
	return fmt.Sprintf("breaker %s: %v", e.Name, e.Err)
}

func (e *BreakerError) Unwrap() error { return e.Err }

// Retryable 实现 xretry.RetryableError。
func (e *BreakerError) Retryable() bool { return false }

// wrap 只包装熔断拒绝，业务错误原样返回。
func (b *Breaker) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &BreakerError{Err: err, Name: b.name, State: b.State()}
	}
	return err
}
